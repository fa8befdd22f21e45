package pdf

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/mgmcet/admission-portal/internal/models"
	"github.com/mgmcet/admission-portal/internal/templates"
)

func testRenderer() *Renderer {
	tmpl := templates.Default()
	tmpl.LogoPath = "" // no filesystem dependency in tests
	r := NewRenderer(tmpl, "https://admissions.example.edu/")
	r.now = func() time.Time {
		return time.Date(2025, time.June, 2, 10, 30, 0, 0, time.UTC)
	}
	return r
}

func testApplication() *models.Application {
	return &models.Application{
		AppID:         "42",
		CandidateName: "Anu Thomas",
		Form: models.ApplicationForm{
			AppID:                "42",
			CandidateName:        "Anu Thomas",
			Email:                "ANU@EXAMPLE.COM",
			PermanentAddress:     "house name\nstreet\nkerala",
			CommunicationAddress: "house name\nstreet\nkerala",
			DateOfBirth:          "2007-03-14",
			Age:                  "18",
			Gender:               "female",
			Nationality:          "indian",
			Place:                "ernakulam",
			Religion:             "hindu",
			Community:            "ezhava",
			Category:             "oec",
			BloodGroup:           "b+ve",
			AadhaarNumber:        "123456789012",
			Quota:                "management",
			Preference1:          "computer science",
			Preference2:          "electronics",
			Preference3:          "mechanical",
			FatherName:           "thomas mathew",
			FatherOccupation:     "farmer",
			FatherMobile:         "9876543210",
			MotherName:           "mary thomas",
			MotherOccupation:     "teacher",
			MotherMobile:         "9876543211",
			AnnualIncome:         "250000",
			GuardianName:         "thomas mathew",
			GuardianRelation:     "father",
			GuardianMobile:       "9876543210",
			LastInstitution:      "govt hss pampakuda",
			BoardOfStudy:         "hse kerala",
			GrandTotal:           "1150",
			TotalPercentage:      "95.8",
			TotalPCM:             "580",
			PCMPercentage:        "96.6",
			SSLCBoard:            "kerala",
			SSLCPercentage:       "97",
		},
		Subjects: []models.Subject{
			{LocalID: 1, Name: "physics", MarkObtained: "98", MaxMark: "100", Grade: "a+"},
			{LocalID: 2, Name: "chemistry", MarkObtained: "95", MaxMark: "100", Grade: "a+"},
			{LocalID: 3, Name: "mathematics", MarkObtained: "99", MaxMark: "100", Grade: "a+"},
		},
	}
}

func TestRenderProducesThreePages(t *testing.T) {
	doc, err := testRenderer().Render(testApplication(), Options{DocumentDate: "02/06/2025"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if doc.Pages != 3 {
		t.Errorf("expected 3 pages, got %d", doc.Pages)
	}
	if len(doc.Bytes) == 0 {
		t.Fatal("expected non-empty document")
	}
	if !bytes.HasPrefix(doc.Bytes, []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}
	if doc.Filename != "Anu_Thomas_Application.pdf" {
		t.Errorf("unexpected filename '%s'", doc.Filename)
	}
}

// inflatedStreams decompresses every flate stream in the document so text
// operators can be matched as plain bytes.
func inflatedStreams(t *testing.T, data []byte) []string {
	t.Helper()

	var out []string
	rest := data
	for {
		i := bytes.Index(rest, []byte("stream"))
		if i < 0 {
			break
		}
		rest = bytes.TrimLeft(rest[i+len("stream"):], "\r\n")
		end := bytes.Index(rest, []byte("endstream"))
		if end < 0 {
			break
		}
		if zr, err := zlib.NewReader(bytes.NewReader(rest[:end])); err == nil {
			if inflated, err := io.ReadAll(zr); err == nil {
				out = append(out, string(inflated))
			}
			zr.Close()
		}
		rest = rest[end+len("endstream"):]
	}

	if len(out) == 0 {
		t.Fatal("no compressed streams found in document")
	}
	return out
}

func streamContaining(streams []string, text string) string {
	for _, s := range streams {
		if strings.Contains(s, text) {
			return s
		}
	}
	return ""
}

func TestRenderStampsEveryPage(t *testing.T) {
	doc, err := testRenderer().Render(testApplication(), Options{DocumentDate: "02/06/2025"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	streams := inflatedStreams(t, doc.Bytes)
	for i := 1; i <= 3; i++ {
		number := fmt.Sprintf("Page %d of 3", i)
		page := streamContaining(streams, number)
		if page == "" {
			t.Fatalf("no page carries the footer '%s'", number)
		}
		if !strings.Contains(page, "02/06/2025, 10:30:00 am") {
			t.Errorf("page %d is missing the render timestamp", i)
		}
		if !strings.Contains(page, "https://admissions.example.edu/") {
			t.Errorf("page %d is missing the portal address", i)
		}
	}
}

func TestRenderWithEntranceBlock(t *testing.T) {
	app := testApplication()
	app.Form.EntranceRegisterNo = "KEAM123456"
	app.Form.EntranceRank = "1520"
	app.EntranceMarks = &models.EntranceMarks{
		Paper1Figures: "240",
		Paper1Words:   "two hundred and forty",
		Paper2Figures: "230",
		Paper2Words:   "two hundred and thirty",
		TotalFigures:  "470",
		TotalWords:    "four hundred and seventy",
	}

	doc, err := testRenderer().Render(app, Options{DocumentDate: "02/06/2025"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if doc.Pages != 3 {
		t.Errorf("expected 3 pages, got %d", doc.Pages)
	}
}

func TestRenderWithoutSubjects(t *testing.T) {
	app := testApplication()
	app.Subjects = nil

	doc, err := testRenderer().Render(app, Options{DocumentDate: "02/06/2025"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if doc.Pages != 3 {
		t.Errorf("expected 3 pages, got %d", doc.Pages)
	}
}

func TestRenderEmptyDateAborts(t *testing.T) {
	doc, err := testRenderer().Render(testApplication(), Options{})
	if !errors.Is(err, ErrRenderAborted) {
		t.Fatalf("expected ErrRenderAborted, got %v", err)
	}
	if doc != nil {
		t.Error("expected no document on abort")
	}
}

func TestFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Anu Thomas", "Anu_Thomas_Application.pdf"},
		{"  Anu  Thomas ", "Anu_Thomas_Application.pdf"},
		{"", "Application_Application.pdf"},
	}
	for _, tc := range cases {
		if got := Filename(tc.in); got != tc.want {
			t.Errorf("Filename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
