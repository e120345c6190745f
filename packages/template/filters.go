package template

import (
	"encoding/json"

	"github.com/flosch/pongo2/v6"

	"github.com/abdul-hamid-achik/apix/packages/builtin"
)

func init() {
	pongo2.SetAutoescape(false)

	registerFilter("tojson", filterToJSON)
	registerFilter("json_path", filterJSONPath)
	registerFilter("b64encode", filterB64Encode)
	registerFilter("b64decode", filterB64Decode)
	registerFilter("md5", filterMD5)
	registerFilter("sha256", filterSHA256)
	registerFilter("urldecode", filterURLDecode)
}

func registerFilter(name string, fn pongo2.FilterFunction) {
	if pongo2.FilterExists(name) {
		_ = pongo2.ReplaceFilter(name, fn)
		return
	}
	_ = pongo2.RegisterFilter(name, fn)
}

func filterError(name string, err error) *pongo2.Error {
	return &pongo2.Error{Sender: "filter:" + name, OrigError: err}
}

func filterToJSON(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	out, err := json.Marshal(plainValue(in.Interface()))
	if err != nil {
		return nil, filterError("tojson", err)
	}
	return pongo2.AsValue(string(out)), nil
}

// {{ context.raw|json_path:"user.id" }}
func filterJSONPath(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	v, ok := builtin.JSONPath(in.String(), param.String())
	if !ok {
		return pongo2.AsValue(nil), nil
	}
	return pongo2.AsValue(templateValue(v)), nil
}

func filterB64Encode(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(builtin.Base64(in.String())), nil
}

func filterB64Decode(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	s, err := builtin.Base64Decode(in.String())
	if err != nil {
		return nil, filterError("b64decode", err)
	}
	return pongo2.AsValue(s), nil
}

func filterMD5(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(builtin.MD5(in.String())), nil
}

func filterSHA256(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(builtin.SHA256(in.String())), nil
}

func filterURLDecode(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(builtin.URLDecode(in.String())), nil
}
