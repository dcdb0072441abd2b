package ravendb

import (
	"encoding/json"
	"testing"
)

func TestDocumentSetGet(t *testing.T) {
	doc := &Document{}
	doc.Set("a", "1")
	doc.Set("b", "2")
	doc.Set("a", "3") // replaces in place

	if doc.Len() != 2 {
		t.Fatalf("Len() = %d", doc.Len())
	}
	if v, ok := doc.Get("a"); !ok || v != "3" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}
	if _, ok := doc.Get("missing"); ok {
		t.Error("Get on missing field reported present")
	}
}

func TestDocumentMarshalPreservesOrder(t *testing.T) {
	doc := &Document{}
	doc.Set("zulu", "1")
	doc.Set("alpha", "2")
	doc.Set("mike", "3")

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"zulu":"1","alpha":"2","mike":"3"}`
	if string(data) != want {
		t.Errorf("marshaled = %s, want %s", data, want)
	}
}

func TestDocumentUnmarshalPreservesOrder(t *testing.T) {
	var doc Document
	if err := json.Unmarshal([]byte(`{"c":"3","a":"1","b":"2"}`), &doc); err != nil {
		t.Fatal(err)
	}

	var order []string
	doc.Each(func(name, value string) {
		order = append(order, name)
	})
	if len(order) != 3 || order[0] != "c" || order[1] != "a" || order[2] != "b" {
		t.Errorf("field order = %v", order)
	}
}

func TestDocumentUnmarshalFlattensNonStringValues(t *testing.T) {
	var doc Document
	raw := `{"s":"text","n":42,"b":true,"o":{"nested":1},"arr":[1,2]}`
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatal(err)
	}

	cases := map[string]string{
		"s":   "text",
		"n":   "42",
		"b":   "true",
		"o":   `{"nested":1}`,
		"arr": "[1,2]",
	}
	for name, want := range cases {
		if got, _ := doc.Get(name); got != want {
			t.Errorf("field %s = %q, want %q", name, got, want)
		}
	}
}

func TestDocumentUnmarshalRejectsNonObject(t *testing.T) {
	var doc Document
	for _, raw := range []string{`[1,2]`, `"str"`, `42`} {
		if err := json.Unmarshal([]byte(raw), &doc); err == nil {
			t.Errorf("unmarshal accepted %s", raw)
		}
	}
}

func TestDocumentEscapedFieldNames(t *testing.T) {
	doc := &Document{}
	doc.Set(`we"ird`, "va\\lue")

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}

	var back Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if v, ok := back.Get(`we"ird`); !ok || v != "va\\lue" {
		t.Errorf("round trip = %q, %v", v, ok)
	}
}
