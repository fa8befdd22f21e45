package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/mgmcet/admission-portal/internal/assets"
	"github.com/mgmcet/admission-portal/internal/models"
	"github.com/mgmcet/admission-portal/internal/templates"
)

// ErrRenderAborted signals that no document date was supplied, which cancels
// rendering without producing any output.
var ErrRenderAborted = errors.New("document rendering cancelled")

const (
	tableX     = 14.0
	tableWidth = 182.0
	textX      = 20.0
	textWidth  = 170.0
)

// Options carries the per-render inputs that are not part of the stored
// record: the operator-chosen document date and the resolved images.
type Options struct {
	// DocumentDate is printed verbatim next to "Date:" on the declaration
	// page. An empty value aborts the render.
	DocumentDate string

	// Assets holds the resolved images; nil slots degrade to placeholders.
	Assets *assets.Resolved
}

// Document is a finished render: the PDF bytes plus the derived download
// filename.
type Document struct {
	Bytes    []byte
	Pages    int
	Filename string
}

// WriteFile writes the document under dir using its derived filename and
// returns the full path.
func (d *Document) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, d.Filename)
	if err := os.WriteFile(path, d.Bytes, 0o644); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	return path, nil
}

// Filename derives the download name from the candidate name, with
// whitespace runs collapsed to underscores.
func Filename(candidateName string) string {
	name := strings.Join(strings.Fields(candidateName), "_")
	if name == "" {
		name = "Application"
	}
	return name + "_Application.pdf"
}

// Renderer produces the fixed three-page application document. The layout
// replicates the official paper form, so coordinates are absolute and pages
// never reflow.
type Renderer struct {
	tmpl        *templates.FormTemplate
	siteAddress string
	now         func() time.Time
}

// NewRenderer creates a renderer for the given form template. siteAddress
// is printed in the page header of every page.
func NewRenderer(tmpl *templates.FormTemplate, siteAddress string) *Renderer {
	return &Renderer{
		tmpl:        tmpl,
		siteAddress: siteAddress,
		now:         time.Now,
	}
}

// Render produces the document for one application record.
func (r *Renderer) Render(app *models.Application, opts Options) (*Document, error) {
	if opts.DocumentDate == "" {
		return nil, ErrRenderAborted
	}

	imgs := opts.Assets
	if imgs == nil {
		imgs = &assets.Resolved{}
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := doc.GetPageSize()

	r.renderDetailsPage(doc, tr, pageW, pageH, app, imgs.Photo)
	r.renderMarksPage(doc, tr, pageW, pageH, app)
	r.renderDeclarationPage(doc, tr, pageW, app, opts.DocumentDate, imgs)
	r.renderPageChrome(doc, tr, pageW, pageH)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}

	return &Document{
		Bytes:    buf.Bytes(),
		Pages:    doc.PageCount(),
		Filename: Filename(app.Form.CandidateName),
	}, nil
}

func pageBorder(doc *gofpdf.Fpdf, pageW, pageH float64) {
	doc.SetDrawColor(0, 0, 0)
	doc.Rect(10, 10, pageW-20, pageH-20, "D")
}

// renderDetailsPage draws the letterhead, the photo box and the personal
// details grid (items 1 to 20).
func (r *Renderer) renderDetailsPage(doc *gofpdf.Fpdf, tr func(string) string, pageW, pageH float64, app *models.Application, photo *assets.InlineImage) {
	doc.AddPage()
	pageBorder(doc, pageW, pageH)
	centerX := pageW / 2

	r.drawLogo(doc)

	const headerTextX = 37.0
	doc.SetFont("Helvetica", "B", 16)
	doc.Text(headerTextX, 23, tr(r.tmpl.CollegeName))
	doc.SetFont("Helvetica", "", 10)
	for i, line := range r.tmpl.AddressLines {
		doc.Text(headerTextX, 29+float64(i)*6, tr(line))
	}
	doc.SetFont("Helvetica", "B", 10)
	for i, line := range r.tmpl.TitleLines {
		centeredText(doc, tr, centerX, 45+float64(i)*5, line)
	}

	doc.Text(20, 65, tr("Application No: "+app.AppID))

	if photo != nil {
		placeImage(doc, "photo", photo, 155, 50, 25, 32)
	} else {
		doc.Rect(155, 57, 25, 32, "D")
		doc.SetFont("Helvetica", "", 10)
		centeredText(doc, tr, 167.5, 73, "Photo")
	}

	form := &app.Form
	preferences := fmt.Sprintf("1. %s 2. %s 3. %s",
		toTitleCase(form.Preference1), toTitleCase(form.Preference2), toTitleCase(form.Preference3))

	rows := [][3]string{
		{"1", "Name of the Candidate", strings.ToUpper(form.CandidateName)},
		{"2", "Permanent Address", collapseLines(toTitleCase(form.PermanentAddress))},
		{"3", "Address For Communication", collapseLines(toTitleCase(form.CommunicationAddress))},
		{"4", "Email", strings.ToLower(form.Email)},
		{"5", "Date of Birth", form.DateOfBirth},
		{"6", "Age", form.Age},
		{"7", "Gender", toSentenceCase(form.Gender)},
		{"8", "Nationality", toSentenceCase(form.Nationality)},
		{"9", "Religion", toSentenceCase(form.Religion)},
		{"10", "Community", toTitleCase(form.Community)},
		{"11", "Category", strings.ToUpper(form.Category)},
		{"12", "Blood Group", toSentenceCase(form.BloodGroup)},
		{"13", "Aadhaar Number", form.AadhaarNumber},
		{"14(a)", "Father's Name", toTitleCase(form.FatherName)},
		{"14(b)", "Occupation", toTitleCase(form.FatherOccupation)},
		{"14(c)", "Mobile No", form.FatherMobile},
		{"15(a)", "Mother's Name", toTitleCase(form.MotherName)},
		{"15(b)", "Occupation", toTitleCase(form.MotherOccupation)},
		{"15(c)", "Mobile No", form.MotherMobile},
		{"16", "Annual Family Income", form.AnnualIncome},
		{"17(a)", "Guardian's Name", toTitleCase(form.GuardianName)},
		{"17(b)", "Relation", toSentenceCase(form.GuardianRelation)},
		{"17(c)", "Mobile No", form.GuardianMobile},
		{"18", "Order of preference of branches offered", preferences},
		{"19", "Name of the Institution last studied", toTitleCase(form.LastInstitution)},
		{"20", "Board of Study (+2)", strings.ToUpper(form.BoardOfStudy)},
	}

	widths := []float64{10, 50, tableWidth - 60}
	y := 80.0
	for _, row := range rows {
		y = drawGridRow(doc, tr, tableX, y, widths, row[:], rowStyle{})
	}
}

// renderMarksPage draws the plus-two subject table, the optional entrance
// examination block, the SSLC rows and the admission quota row. The item
// numbers after the subject table shift together when the entrance block is
// present.
func (r *Renderer) renderMarksPage(doc *gofpdf.Fpdf, tr func(string) string, pageW, pageH float64, app *models.Application) {
	doc.AddPage()
	pageBorder(doc, pageW, pageH)

	form := &app.Form
	labels := itemLabels(app.HasEntrance())
	itemWidths := []float64{10, 50, tableWidth - 60}

	y := 20.0
	y = drawSectionBar(doc, tr, tableX, y, "21", "Details of Marks secured in the plus two examination")

	subjectWidths := []float64{62, 40, 40, 40}
	y = drawGridRow(doc, tr, tableX, y, subjectWidths,
		[]string{"Subject", "Mark Obtained", "Maximum Marks", "Grade"},
		rowStyle{bold: true, fillGray: 220, pad: 2})
	for _, subj := range app.Subjects {
		if y > pageH-30 {
			doc.AddPage()
			pageBorder(doc, pageW, pageH)
			y = 20
		}
		y = drawGridRow(doc, tr, tableX, y, subjectWidths, []string{
			toSentenceCase(subj.Name), subj.MarkObtained, subj.MaxMark, toTitleCase(subj.Grade),
		}, rowStyle{})
	}

	totalWidths := []float64{tableWidth / 2, tableWidth / 2}
	totalStyle := rowStyle{bold: true, aligns: []string{"R", "R"}, pad: 2}
	y = drawGridRow(doc, tr, tableX, y, totalWidths, []string{
		"Grand Total: " + form.GrandTotal, "Total Percentage: " + form.TotalPercentage,
	}, totalStyle)
	y = drawGridRow(doc, tr, tableX, y, totalWidths, []string{
		"Total PCM: " + form.TotalPCM, "PCM Percentage: " + form.PCMPercentage,
	}, totalStyle)

	if app.HasEntrance() {
		y = drawSectionBar(doc, tr, tableX, y, labels.EntranceHeader, "Details of Entrance examination")
		y = drawGridRow(doc, tr, tableX, y, itemWidths,
			[]string{labels.EntranceRegister, "Register No", form.EntranceRegisterNo}, rowStyle{})
		y = drawGridRow(doc, tr, tableX, y, itemWidths,
			[]string{labels.EntranceRank, "Rank", form.EntranceRank}, rowStyle{})
		y = r.drawEntranceMarks(doc, tr, y, app.EntranceMarks)
	}

	y = drawSectionBar(doc, tr, tableX, y, labels.SSLCHeader, "Details of Marks secured in the SSLC examination")
	y = drawGridRow(doc, tr, tableX, y, itemWidths,
		[]string{labels.SSLCBoard, "Board of Study", strings.ToUpper(form.SSLCBoard)}, rowStyle{})
	y = drawGridRow(doc, tr, tableX, y, itemWidths,
		[]string{labels.SSLCPercentage, "Total % of marks", form.SSLCPercentage}, rowStyle{})

	drawGridRow(doc, tr, tableX, y, itemWidths,
		[]string{labels.Quota, "Admission Quota", toSentenceCase(form.Quota)}, rowStyle{})
}

// drawEntranceMarks draws the two-row marks header (Subject / Paper spans
// both rows, Marks Scored spans both value columns) followed by the three
// fixed paper rows.
func (r *Renderer) drawEntranceMarks(doc *gofpdf.Fpdf, tr func(string) string, y float64, marks *models.EntranceMarks) float64 {
	const (
		subjectW = 82.0
		valueW   = 50.0
		headerH  = 7.0
	)

	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(220, 220, 220)
	doc.Rect(tableX, y, subjectW, 2*headerH, "FD")
	doc.Rect(tableX+subjectW, y, 2*valueW, headerH, "FD")
	doc.Rect(tableX+subjectW, y+headerH, valueW, headerH, "FD")
	doc.Rect(tableX+subjectW+valueW, y+headerH, valueW, headerH, "FD")

	centeredText(doc, tr, tableX+subjectW/2, y+headerH+1.5, "Subject / Paper")
	centeredText(doc, tr, tableX+subjectW+valueW, y+headerH-2.5, "Marks Scored")
	centeredText(doc, tr, tableX+subjectW+valueW/2, y+2*headerH-2.5, "In Figures")
	centeredText(doc, tr, tableX+subjectW+valueW*1.5, y+2*headerH-2.5, "In Words")
	y += 2 * headerH

	widths := []float64{subjectW, valueW, valueW}
	rows := [][]string{
		{"Paper I (Physics & Chemistry)", marks.Paper1Figures, toTitleCase(marks.Paper1Words)},
		{"Paper II (Mathematics)", marks.Paper2Figures, toTitleCase(marks.Paper2Words)},
		{"Total Marks", marks.TotalFigures, toTitleCase(marks.TotalWords)},
	}
	for _, row := range rows {
		y = drawGridRow(doc, tr, tableX, y, widths, row, rowStyle{pad: 2})
	}
	return y
}

// renderDeclarationPage draws the declaration, the signature slots and the
// office-use certificate block.
func (r *Renderer) renderDeclarationPage(doc *gofpdf.Fpdf, tr func(string) string, pageW float64, app *models.Application, documentDate string, imgs *assets.Resolved) {
	_, pageH := doc.GetPageSize()
	doc.AddPage()
	pageBorder(doc, pageW, pageH)
	centerX := pageW / 2
	form := &app.Form

	y := 30.0
	doc.SetFont("Helvetica", "B", 14)
	centeredText(doc, tr, centerX, y, "Declaration")
	y += 15

	doc.SetFont("Helvetica", "", 10)
	multilineText(doc, tr, textX, y, textWidth, 4.5, r.tmpl.Declaration)
	y += 25

	doc.Text(textX, y, tr("Place: "+toSentenceCase(form.Place)))
	doc.Text(textX, y+8, tr("Date: "+documentDate))
	doc.Text(120, y, tr("Name: "+toTitleCase(form.CandidateName)))
	doc.Text(textX, y+25, tr("Signature of the Parent:"))
	doc.Text(120, y+25, tr("Signature of the Applicant:"))

	if imgs.ParentSignature != nil {
		placeImage(doc, "parent-signature", imgs.ParentSignature, textX, y+30, 40, 15)
	}
	if imgs.ApplicantSignature != nil {
		placeImage(doc, "applicant-signature", imgs.ApplicantSignature, 120, y+30, 40, 15)
	}
	y += 60

	doc.SetFont("Helvetica", "B", 12)
	centeredText(doc, tr, centerX, y, "FOR OFFICE USE ONLY")
	y += 10

	const certTitle = "CERTIFICATE"
	centeredText(doc, tr, centerX, y, certTitle)
	titleW := doc.GetStringWidth(certTitle)
	doc.Line(centerX-titleW/2, y+1, centerX+titleW/2, y+1)
	y += 10

	doc.SetFont("Helvetica", "", 10)
	multilineText(doc, tr, textX, y, textWidth, 4.5, r.tmpl.Certificate)
	y += 20

	doc.SetFont("Helvetica", "B", 10)
	doc.Text(textX, y, tr("Place:"))
	doc.Text(120, y, tr("Signature:"))
	y += 8
	doc.Text(textX, y, tr("Date:"))
	doc.Text(120, y, tr("Name:"))
	y += 8
	doc.Text(120, y, tr("Designation:"))
	y += 15

	doc.SetFont("Helvetica", "", 10)
	multilineText(doc, tr, textX, y, textWidth, 6.8, r.tmpl.AdmissionLine)
	y += 25

	doc.SetFont("Helvetica", "B", 10)
	doc.Text(textX, y, tr("Signature of Director"))
	doc.Text(150, y, tr("Signature of Principal"))
}

// renderPageChrome stamps every page with the render timestamp, the portal
// address and the page number.
func (r *Renderer) renderPageChrome(doc *gofpdf.Fpdf, tr func(string) string, pageW, pageH float64) {
	stamp := r.now().Format("02/01/2006, 3:04:05 pm")
	count := doc.PageCount()

	doc.SetFont("Helvetica", "", 8)
	doc.SetTextColor(150, 150, 150)
	for i := 1; i <= count; i++ {
		doc.SetPage(i)
		doc.Text(10, 7, tr(stamp))
		site := tr(r.siteAddress)
		doc.Text(pageW-10-doc.GetStringWidth(site), 7, site)
		pageNum := fmt.Sprintf("Page %d of %d", i, count)
		doc.Text(pageW-10-doc.GetStringWidth(pageNum), pageH-7, pageNum)
	}
	doc.SetTextColor(0, 0, 0)
}

// drawLogo embeds the configured logo if the file exists; a missing logo
// only costs the image, never the render.
func (r *Renderer) drawLogo(doc *gofpdf.Fpdf) {
	if r.tmpl.LogoPath == "" {
		return
	}
	data, err := os.ReadFile(r.tmpl.LogoPath)
	if err != nil {
		slog.Warn("form logo unavailable", "path", r.tmpl.LogoPath, "error", err)
		return
	}
	img := &assets.InlineImage{Data: data, Format: formatForPath(r.tmpl.LogoPath)}
	if img.Format == "" {
		slog.Warn("form logo format not embeddable", "path", r.tmpl.LogoPath)
		return
	}
	placeImage(doc, "logo", img, 18, 17, 15, 20)
}

func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "PNG"
	case ".jpg", ".jpeg":
		return "JPEG"
	default:
		return ""
	}
}

// placeImage registers the image bytes under a per-slot name and draws it at
// the given box.
func placeImage(doc *gofpdf.Fpdf, name string, img *assets.InlineImage, x, y, w, h float64) {
	opts := gofpdf.ImageOptions{ImageType: img.Format, ReadDpi: true}
	doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	doc.ImageOptions(name, x, y, w, h, false, opts, 0, "")
}
