package config

import (
	"strings"
)

// StringSliceFlag is a flag type of comma separated values
type StringSliceFlag []string

// String implements flag.Value interface
func (s *StringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

// Set implements flag.Value interface, empty values are skipped
func (s *StringSliceFlag) Set(value string) error {
	var res []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			res = append(res, v)
		}
	}
	*s = res
	return nil
}

// Get implements flag.Getter interface
func (s *StringSliceFlag) Get() any {
	return []string(*s)
}
