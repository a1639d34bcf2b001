package api

import (
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/cshum/imgixset"
	"github.com/cshum/imgixset/ixparams"
)

// propKeys query keys read as props, every other key is an imgix param
var propKeys = []string{
	"src", "domain", "w", "h", "sizes", "element",
	"disable-srcset", "disable-library-param", "disable-path-encoding",
	"disable-quality-by-dpr", "disable-https",
}

var urlKeys = []string{
	"src", "domain", "disable-library-param", "disable-path-encoding", "disable-https",
}

var measureKeys = []string{"measured-width", "measured-height", "dpr"}

// parseProps reads props of query, excluding the extra keys from imgix params
func parseProps(q url.Values, extra ...string) (p imgixset.Props, err error) {
	p.Src = q.Get("src")
	p.Domain = q.Get("domain")
	p.Sizes = q.Get("sizes")
	switch e := imgixset.Element(q.Get("element")); e {
	case "", imgixset.ElementImg, imgixset.ElementSource:
		p.Element = e
	default:
		return p, invalidParam("element", string(e))
	}
	if p.Width, err = parseInt(q, "w"); err != nil {
		return
	}
	if p.Height, err = parseInt(q, "h"); err != nil {
		return
	}
	if err = parseFlags(q, &p, map[string]*bool{
		"disable-srcset":         &p.DisableSrcSet,
		"disable-quality-by-dpr": &p.DisableQualityByDPR,
	}); err != nil {
		return
	}
	p.ImgixParams = queryParams(q, slices.Concat(propKeys, extra)...)
	return
}

// parseURLProps reads src, domain and URL flags of query,
// every other key is an imgix param
func parseURLProps(q url.Values) (p imgixset.Props, params ixparams.Params, err error) {
	p.Src = q.Get("src")
	p.Domain = q.Get("domain")
	if err = parseFlags(q, &p, nil); err != nil {
		return
	}
	params = queryParams(q, urlKeys...)
	return
}

// parseFlags reads URL flags of query into p, plus the extra flags
func parseFlags(q url.Values, p *imgixset.Props, extra map[string]*bool) (err error) {
	flags := map[string]*bool{
		"disable-library-param": &p.DisableLibraryParam,
		"disable-path-encoding": &p.DisablePathEncoding,
		"disable-https":         &p.DisableHTTPS,
	}
	maps.Copy(flags, extra)
	for key, dst := range flags {
		if *dst, err = parseBool(q, key); err != nil {
			return
		}
	}
	return
}

// queryParams returns imgix params of query excluding keys,
// the last value wins for repeated keys
func queryParams(q url.Values, exclude ...string) ixparams.Params {
	skip := make(map[string]bool, len(exclude))
	for _, k := range exclude {
		skip[k] = true
	}
	var params ixparams.Params
	for k, vs := range q {
		if skip[k] || len(vs) == 0 {
			continue
		}
		if params == nil {
			params = ixparams.Params{}
		}
		params[k] = vs[len(vs)-1]
	}
	return params
}

func parseInt(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, invalidParam(key, v)
	}
	return n, nil
}

func parseFloat(q url.Values, key string) (float64, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, invalidParam(key, v)
	}
	return n, nil
}

func parseBool(q url.Values, key string) (bool, error) {
	if !q.Has(key) {
		return false, nil
	}
	v := q.Get(key)
	if v == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, invalidParam(key, v)
	}
	return b, nil
}

func invalidParam(key, value string) error {
	return imgixset.NewError("invalid "+key+": "+value, http.StatusBadRequest)
}
