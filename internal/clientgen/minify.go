package clientgen

import (
	"bytes"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/js"
)

var jsMinifier = func() *minify.M {
	m := minify.New()
	m.AddFunc("application/javascript", js.Minify)
	return m
}()

// MinifyJS returns the minified form of a JS client stub. Minifying
// already-minified output yields the same bytes.
func MinifyJS(source []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := jsMinifier.Minify("application/javascript", &out, bytes.NewReader(source)); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
