package types

import "testing"

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want QueryCategory
	}{
		{"coding", CategoryCoding},
		{"CODING", CategoryCoding},
		{"legal", CategoryLegal},
		{"operations", CategoryOperations},
		{"", CategoryUnknown},
		{"astrology", CategoryUnknown},
		{"unknown", CategoryUnknown},
	}
	for _, tc := range cases {
		if got := ParseCategory(tc.in); got != tc.want {
			t.Errorf("ParseCategory(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestCapabilityAxis(t *testing.T) {
	cases := []struct {
		cat  QueryCategory
		want string
	}{
		{CategoryCoding, "coding"},
		{CategoryData, "coding"},
		{CategoryLegal, "reasoning"},
		{CategoryCompliance, "reasoning"},
		{CategoryFinance, "reasoning"},
		{CategoryCreative, "creative"},
		{CategoryOperations, "operations"},
		{CategoryProduct, "product"},
		{CategoryGeneral, "reasoning"},
		{CategoryUnknown, "reasoning"},
	}
	for _, tc := range cases {
		if got := tc.cat.CapabilityAxis(); got != tc.want {
			t.Errorf("%s axis = %q, want %q", tc.cat, got, tc.want)
		}
	}
}
