package utils

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Loja XPTO":       "loja-xpto",
		"Açaí & Cia":      "acai-cia",
		"  MERCADO   SUL": "mercado-sul",
		"shop_123":        "shop-123",
		"João":            "joao",
		"":                "",
		"---":             "",
	}

	for input, want := range cases {
		if got := Slugify(input); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSlugifyDistinctNamesStayDistinct(t *testing.T) {
	a := Slugify("Loja XPTO")
	b := Slugify("Loja Sul")
	if a == b {
		t.Errorf("Distinct account names produced the same slug: %q", a)
	}
}
