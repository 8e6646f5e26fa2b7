package api

type Permission struct {
	Key    string `json:"key" yaml:"key"`
	Title  string `json:"title" yaml:"title"`
	Bundle string `json:"bundle,omitempty" yaml:"bundle,omitempty"`
}
