package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// LocalizedName models the country/city name fields the geo gateway
// returns: either a plain string or an object keyed by locale
// ("en", "ar", ...). It keeps whichever form it was given and
// normalizes on display.
type LocalizedName struct {
	Plain   string
	ByLocal map[string]string
}

func NameOf(s string) LocalizedName {
	return LocalizedName{Plain: s}
}

func LocalizedNameOf(m map[string]string) LocalizedName {
	return LocalizedName{ByLocal: m}
}

// Display resolves to a single string: the plain form when present,
// else the "en" entry, else the value under the lexicographically
// smallest locale key so normalization stays deterministic.
func (n LocalizedName) Display() string {
	if n.Plain != "" {
		return n.Plain
	}
	if len(n.ByLocal) == 0 {
		return ""
	}
	if v, ok := n.ByLocal["en"]; ok && v != "" {
		return v
	}
	keys := make([]string, 0, len(n.ByLocal))
	for k := range n.ByLocal {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return n.ByLocal[keys[0]]
}

func (n LocalizedName) IsZero() bool {
	return n.Plain == "" && len(n.ByLocal) == 0
}

func (n LocalizedName) MarshalJSON() ([]byte, error) {
	if len(n.ByLocal) > 0 {
		return json.Marshal(n.ByLocal)
	}
	return json.Marshal(n.Plain)
}

func (n *LocalizedName) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = LocalizedName{Plain: s}
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err == nil {
		*n = LocalizedName{ByLocal: m}
		return nil
	}
	return fmt.Errorf("localized name must be a string or a locale map, got %s", string(data))
}

// Value / Scan store the field as its JSON form so gorm can keep both
// shapes in a single text column.
func (n LocalizedName) Value() (driver.Value, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (n *LocalizedName) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n = LocalizedName{}
		return nil
	case []byte:
		return n.UnmarshalJSON(v)
	case string:
		return n.UnmarshalJSON([]byte(v))
	default:
		return errors.New("unsupported source type for localized name")
	}
}
