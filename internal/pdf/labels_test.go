package pdf

import "testing"

func TestItemLabelsWithoutEntrance(t *testing.T) {
	labels := itemLabels(false)

	if labels.SSLCHeader != "22" {
		t.Errorf("expected SSLC header '22', got '%s'", labels.SSLCHeader)
	}
	if labels.SSLCBoard != "22(a)" {
		t.Errorf("expected SSLC board '22(a)', got '%s'", labels.SSLCBoard)
	}
	if labels.SSLCPercentage != "22(b)" {
		t.Errorf("expected SSLC percentage '22(b)', got '%s'", labels.SSLCPercentage)
	}
	if labels.Quota != "23" {
		t.Errorf("expected quota '23', got '%s'", labels.Quota)
	}
	if labels.EntranceHeader != "" {
		t.Errorf("expected no entrance header, got '%s'", labels.EntranceHeader)
	}
}

func TestItemLabelsWithEntrance(t *testing.T) {
	labels := itemLabels(true)

	if labels.EntranceHeader != "22" {
		t.Errorf("expected entrance header '22', got '%s'", labels.EntranceHeader)
	}
	if labels.EntranceRegister != "22(a)" {
		t.Errorf("expected register label '22(a)', got '%s'", labels.EntranceRegister)
	}
	if labels.EntranceRank != "22(b)" {
		t.Errorf("expected rank label '22(b)', got '%s'", labels.EntranceRank)
	}
	if labels.SSLCHeader != "23" {
		t.Errorf("expected SSLC header '23', got '%s'", labels.SSLCHeader)
	}
	if labels.SSLCBoard != "23(a)" {
		t.Errorf("expected SSLC board '23(a)', got '%s'", labels.SSLCBoard)
	}
	if labels.SSLCPercentage != "23(b)" {
		t.Errorf("expected SSLC percentage '23(b)', got '%s'", labels.SSLCPercentage)
	}
	if labels.Quota != "24" {
		t.Errorf("expected quota '24', got '%s'", labels.Quota)
	}
}

func TestToSentenceCase(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"male", "Male"},
		{"HINDU", "Hindu"},
		{"o+VE", "O+ve"},
		{"a", "A"},
		{"nRi", "Nri"},
	}
	for _, tc := range cases {
		if got := toSentenceCase(tc.in); got != tc.want {
			t.Errorf("toSentenceCase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestToTitleCase(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"anu thomas", "Anu Thomas"},
		{"ANU THOMAS", "Anu Thomas"},
		{"govt. higher", "Govt. Higher"},
		{"computer science", "Computer Science"},
	}
	for _, tc := range cases {
		if got := toTitleCase(tc.in); got != tc.want {
			t.Errorf("toTitleCase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCollapseLines(t *testing.T) {
	got := collapseLines("House Name\nStreet\n\nDistrict  Kerala")
	want := "House Name Street District Kerala"
	if got != want {
		t.Errorf("collapseLines = %q, want %q", got, want)
	}
}
