// Package manifest defines the apix manifest model and its YAML codec.
//
// A manifest is a versioned envelope (apiVersion apix.io/v1) with metadata
// and exactly one kind payload: Api, Configuration, Request or Story. The
// payload lives under the spec key and is selected by the kind key:
//
//	apiVersion: apix.io/v1
//	kind: Request
//	metadata:
//	  name: get-user
//	spec:
//	  parameters: [...]
//	  request: {...}
//
// Manifests are discovered on disk by kind and metadata.name.
package manifest
