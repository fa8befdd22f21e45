package validate

import (
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mgmcet/admission-portal/internal/models"
)

// Error carries per-field validation messages. The map key is the form
// field name as the client posted it.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

func (e *Error) add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// requiredMessages maps field names to the message shown when the field is
// missing. Format violations get their own messages below.
var requiredMessages = map[string]string{
	"candidateName":        "Name is required",
	"email":                "Email is required",
	"permanentAddress":     "Permanent address is required",
	"communicationAddress": "Communication address is required",
	"dateOfBirth":          "Date of birth is required",
	"age":                  "Age is required",
	"gender":               "Gender is required",
	"nationality":          "Nationality is required",
	"place":                "Place is required",
	"religion":             "Religion is required",
	"community":            "Community is required",
	"category":             "Category is required",
	"bloodGroup":           "Blood group is required",
	"aadhaarNumber":        "Aadhaar number is required",
	"quota":                "Admission quota is required",
	"preference1":          "First preference is required",
	"preference2":          "Second preference is required",
	"preference3":          "Third preference is required",
	"fatherName":           "Father's name is required",
	"fatherOccupation":     "Father's occupation is required",
	"fatherMobile":         "Father's mobile is required",
	"motherName":           "Mother's name is required",
	"motherOccupation":     "Mother's occupation is required",
	"motherMobile":         "Mother's mobile is required",
	"annualIncome":         "Annual family income is required",
	"guardianName":         "Guardian's name is required",
	"guardianRelation":     "Guardian's relation is required",
	"guardianMobileNumber": "Guardian's mobile is required",
	"lastInstitution":      "Last institution is required",
	"boardOfStudy":         "Board of study is required",
	"grandTotal":           "Grand Total is required",
	"totalPercentage":      "Total Percentage is required",
	"totalPCM":             "Total PCM is required",
	"pcmPercentage":        "PCM Percentage is required",
	"sslcBoard":            "SSLC board is required",
	"sslcPercentage":       "SSLC percentage is required",
}

var formatMessages = map[string]string{
	"email":                "Please enter a valid email address",
	"aadhaarNumber":        "Aadhaar number must be 12 digits",
	"fatherMobile":         "Mobile number must be 10 digits",
	"motherMobile":         "Mobile number must be 10 digits",
	"guardianMobileNumber": "Mobile number must be 10 digits",
}

var entranceRequiredMessages = map[string]string{
	"entranceRegisterNo": "Entrance register number is required",
	"entranceRank":       "Entrance rank is required",
	"paper1Figures":      "Paper 1 marks (figures) is required",
	"paper1Words":        "Paper 1 marks (words) is required",
	"paper2Figures":      "Paper 2 marks (figures) is required",
	"paper2Words":        "Paper 2 marks (words) is required",
	"totalFigures":       "Total marks (figures) is required",
	"totalWords":         "Total marks (words) is required",
}

var assetLabels = map[string]string{
	"photo":              "Passport size photo",
	"parentSignature":    "Parent signature",
	"applicantSignature": "Applicant signature",
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Schema validates admission submissions before any side effect occurs.
type Schema struct {
	v              *validator.Validate
	maxUploadBytes int64
}

// New builds a schema. maxUploadBytes bounds each uploaded image.
func New(maxUploadBytes int64) *Schema {
	v := validator.New()

	// Report json tag names so messages line up with the posted fields.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Schema{v: v, maxUploadBytes: maxUploadBytes}
}

// ValidateSubmission checks every field, subject row, the entrance block
// (when present) and the three uploads. A nil return means the submission
// is safe to act on.
func (s *Schema) ValidateSubmission(sub *models.Submission) *Error {
	verr := &Error{Fields: make(map[string]string)}

	if err := s.v.Struct(&sub.Form); err != nil {
		var fieldErrs validator.ValidationErrors
		if ok := asValidationErrors(err, &fieldErrs); ok {
			for _, fe := range fieldErrs {
				name := fe.Field()
				if fe.Tag() == "required" {
					if msg, ok := requiredMessages[name]; ok {
						verr.add(name, msg)
					} else {
						verr.add(name, "This field is required")
					}
					continue
				}
				if msg, ok := formatMessages[name]; ok {
					verr.add(name, msg)
				} else {
					verr.add(name, "Invalid value")
				}
			}
		}
	}

	s.checkRanges(&sub.Form, verr)
	s.checkSubjects(sub.Subjects, verr)
	s.checkEntrance(sub, verr)
	s.checkAsset("photo", sub.Photo, verr)
	s.checkAsset("parentSignature", sub.ParentSignature, verr)
	s.checkAsset("applicantSignature", sub.ApplicantSignature, verr)

	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

// checkRanges applies the numeric bounds that the tag grammar cannot
// express on string-typed fields.
func (s *Schema) checkRanges(form *models.ApplicationForm, verr *Error) {
	if form.Age != "" {
		if age, err := strconv.ParseFloat(form.Age, 64); err != nil || age < 13 || age > 50 {
			verr.add("age", "Age must be between 13 and 50")
		}
	}
	if form.SSLCPercentage != "" {
		if pct, err := strconv.ParseFloat(form.SSLCPercentage, 64); err != nil || pct < 0 || pct > 100 {
			verr.add("sslcPercentage", "Percentage must be between 0 and 100")
		}
	}
}

func (s *Schema) checkSubjects(subjects []models.Subject, verr *Error) {
	if len(subjects) == 0 {
		verr.add("subjects", "Please add at least one subject.")
		return
	}
	for _, subj := range subjects {
		if blank(subj.Name) || blank(subj.MarkObtained) || blank(subj.MaxMark) || blank(subj.Grade) {
			verr.add("subjects", "All fields for every subject are required.")
			return
		}
	}
}

// checkEntrance requires the full entrance block when the candidate has
// taken the exam; records without the block skip it entirely.
func (s *Schema) checkEntrance(sub *models.Submission, verr *Error) {
	if sub.Entrance == nil {
		return
	}

	fields := map[string]string{
		"entranceRegisterNo": sub.Form.EntranceRegisterNo,
		"entranceRank":       sub.Form.EntranceRank,
		"paper1Figures":      sub.Entrance.Paper1Figures,
		"paper1Words":        sub.Entrance.Paper1Words,
		"paper2Figures":      sub.Entrance.Paper2Figures,
		"paper2Words":        sub.Entrance.Paper2Words,
		"totalFigures":       sub.Entrance.TotalFigures,
		"totalWords":         sub.Entrance.TotalWords,
	}
	for name, value := range fields {
		if blank(value) {
			verr.add(name, entranceRequiredMessages[name])
		}
	}
}

func (s *Schema) checkAsset(name string, file models.FileUpload, verr *Error) {
	if file.Empty() {
		verr.add(name, assetLabels[name]+" is required")
		return
	}
	if int64(len(file.Data)) > s.maxUploadBytes {
		verr.add(name, fmt.Sprintf("File size must be less than %s", humanSize(s.maxUploadBytes)))
		return
	}
	if !allowedImageTypes[sniffContentType(file.Data)] {
		verr.add(name, "Only image files are allowed")
	}
}

// sniffContentType detects the MIME type from the file's leading bytes;
// the client-declared type is never trusted.
func sniffContentType(data []byte) string {
	limit := len(data)
	if limit > 512 {
		limit = 512
	}
	return http.DetectContentType(data[:limit])
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = fieldErrs
	return true
}
