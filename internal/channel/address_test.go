package channel

import (
	"errors"
	"testing"
)

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress("meter0/ActivePower")
	if err != nil {
		t.Fatalf("ParseAddress() error = %v", err)
	}
	if a.Component != "meter0" || a.Channel != "ActivePower" {
		t.Errorf("ParseAddress() = %+v", a)
	}
	if a.String() != "meter0/ActivePower" {
		t.Errorf("String() = %q", a.String())
	}

	for _, bad := range []string{"", "meter0", "/ActivePower", "meter0/", "a/b/c"} {
		if _, err := ParseAddress(bad); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("ParseAddress(%q) error = %v, want ErrInvalidAddress", bad, err)
		}
	}
}

func TestSorted(t *testing.T) {
	in := []Address{
		NewAddress("meter0", "B"),
		NewAddress("_sum", "Z"),
		NewAddress("meter0", "A"),
		NewAddress("_sum", "Z"),
	}
	got := Sorted(in)
	want := []Address{
		NewAddress("_sum", "Z"),
		NewAddress("meter0", "A"),
		NewAddress("meter0", "B"),
	}
	if len(got) != len(want) {
		t.Fatalf("Sorted() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sorted()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if in[0] != NewAddress("meter0", "B") {
		t.Error("Sorted() must not modify its input")
	}
}

func TestLong(t *testing.T) {
	if _, ok := Long("12"); ok {
		t.Error("Long(string) should not convert")
	}
	if v, ok := Long(-3.9); !ok || v != -3 {
		t.Errorf("Long(-3.9) = %v, %v; want -3", v, ok)
	}
}
