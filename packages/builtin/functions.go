package builtin

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/rand"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Func is a template function. Arguments arrive as evaluated template values.
type Func func(args []any) (any, error)

type Registry struct {
	funcs map[string]Func
}

func NewRegistry() *Registry {
	r := &Registry{
		funcs: make(map[string]Func),
	}
	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	r.funcs["now"] = funcNow
	r.funcs["timestamp"] = funcTimestamp
	r.funcs["timestamp_ms"] = funcTimestampMs
	r.funcs["uuid"] = funcUUID
	r.funcs["random"] = funcRandom
	r.funcs["random_string"] = funcRandomString
	r.funcs["random_email"] = funcRandomEmail
	r.funcs["date"] = funcDate
}

func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

func (r *Registry) Lookup(name string) (Func, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns the registered function names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func funcNow(_ []any) (any, error) {
	return time.Now().UTC().Format(time.RFC3339), nil
}

func funcTimestamp(_ []any) (any, error) {
	return time.Now().Unix(), nil
}

func funcTimestampMs(_ []any) (any, error) {
	return time.Now().UnixMilli(), nil
}

func funcUUID(_ []any) (any, error) {
	return uuid.New().String(), nil
}

func funcRandom(args []any) (any, error) {
	min, max := 0, 100
	if len(args) >= 2 {
		var err error
		if min, err = ToInt(args[0]); err != nil {
			return nil, fmt.Errorf("random(): min: %w", err)
		}
		if max, err = ToInt(args[1]); err != nil {
			return nil, fmt.Errorf("random(): max: %w", err)
		}
	}
	if max < min {
		return nil, fmt.Errorf("random(): max %d is lower than min %d", max, min)
	}
	return rand.Intn(max-min+1) + min, nil
}

func funcRandomString(args []any) (any, error) {
	length := 16
	if len(args) >= 1 {
		var err error
		if length, err = ToInt(args[0]); err != nil {
			return nil, fmt.Errorf("random_string(): length: %w", err)
		}
	}
	return randomString(length, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"), nil
}

func funcRandomEmail(_ []any) (any, error) {
	user := randomString(8, "abcdefghijklmnopqrstuvwxyz")
	domain := randomString(6, "abcdefghijklmnopqrstuvwxyz")
	return fmt.Sprintf("%s@%s.com", user, domain), nil
}

func funcDate(args []any) (any, error) {
	format := "2006-01-02"
	if len(args) >= 1 {
		format = fmt.Sprint(args[0])
	}
	return time.Now().UTC().Format(format), nil
}

func randomString(length int, charset string) string {
	if length < 0 {
		length = 0
	}
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

// ToInt converts a template argument to an int.
func ToInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("%q is not a valid integer", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%v is not a valid integer", v)
	}
}

func Base64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func Base64Decode(s string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func MD5(s string) string {
	hash := md5.Sum([]byte(s))
	return hex.EncodeToString(hash[:])
}

func SHA256(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}

func URLEncode(s string) string {
	return url.QueryEscape(s)
}

func URLDecode(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// JSONPath queries a JSON document with a gjson path. ok is false when the
// document is not JSON or the path does not exist.
func JSONPath(doc, path string) (any, bool) {
	if !gjson.Valid(doc) {
		return nil, false
	}
	result := gjson.Get(doc, path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}
