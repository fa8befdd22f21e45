package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mgmcet/admission-portal/internal/models"
)

// parseMemoryLimit bounds how much of the multipart body is held in memory;
// larger parts spill to temp files.
const parseMemoryLimit = 8 << 20

// parseSubmission decodes the multipart submission form. Flat fields arrive
// as form values under their client-side names, the subject rows and the
// entrance block arrive as JSON-encoded fields, and the three images arrive
// as file parts.
func (s *Server) parseSubmission(r *http.Request) (*models.Submission, error) {
	if err := r.ParseMultipartForm(parseMemoryLimit); err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	sub := &models.Submission{
		Form: models.ApplicationForm{
			CandidateName:        r.FormValue("candidateName"),
			Email:                r.FormValue("email"),
			PermanentAddress:     r.FormValue("permanentAddress"),
			CommunicationAddress: r.FormValue("communicationAddress"),
			DateOfBirth:          r.FormValue("dateOfBirth"),
			Age:                  r.FormValue("age"),
			Gender:               r.FormValue("gender"),
			Nationality:          r.FormValue("nationality"),
			Place:                r.FormValue("place"),
			Religion:             r.FormValue("religion"),
			Community:            r.FormValue("community"),
			Category:             r.FormValue("category"),
			BloodGroup:           r.FormValue("bloodGroup"),
			AadhaarNumber:        r.FormValue("aadhaarNumber"),
			Quota:                r.FormValue("quota"),
			Preference1:          r.FormValue("preference1"),
			Preference2:          r.FormValue("preference2"),
			Preference3:          r.FormValue("preference3"),
			FatherName:           r.FormValue("fatherName"),
			FatherOccupation:     r.FormValue("fatherOccupation"),
			FatherMobile:         r.FormValue("fatherMobile"),
			MotherName:           r.FormValue("motherName"),
			MotherOccupation:     r.FormValue("motherOccupation"),
			MotherMobile:         r.FormValue("motherMobile"),
			AnnualIncome:         r.FormValue("annualIncome"),
			GuardianName:         r.FormValue("guardianName"),
			GuardianRelation:     r.FormValue("guardianRelation"),
			GuardianMobile:       r.FormValue("guardianMobileNumber"),
			LastInstitution:      r.FormValue("lastInstitution"),
			BoardOfStudy:         r.FormValue("boardOfStudy"),
			GrandTotal:           r.FormValue("grandTotal"),
			TotalPercentage:      r.FormValue("totalPercentage"),
			TotalPCM:             r.FormValue("totalPCM"),
			PCMPercentage:        r.FormValue("pcmPercentage"),
			EntranceRegisterNo:   r.FormValue("entranceRegisterNo"),
			EntranceRank:         r.FormValue("entranceRank"),
			SSLCBoard:            r.FormValue("sslcBoard"),
			SSLCPercentage:       r.FormValue("sslcPercentage"),
		},
	}

	if raw := r.FormValue("subjects"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sub.Subjects); err != nil {
			return nil, fmt.Errorf("invalid subjects payload: %w", err)
		}
	}

	// The entrance block is opt-out: candidates who have not taken the exam
	// submit hasEntrance=false and the block is dropped entirely.
	if r.FormValue("hasEntrance") != "false" {
		sub.Entrance = &models.EntranceMarks{}
		if raw := r.FormValue("entranceMarks"); raw != "" {
			if err := json.Unmarshal([]byte(raw), sub.Entrance); err != nil {
				return nil, fmt.Errorf("invalid entrance marks payload: %w", err)
			}
		}
	}

	var err error
	if sub.Photo, err = s.readUpload(r, "photo"); err != nil {
		return nil, err
	}
	if sub.ParentSignature, err = s.readUpload(r, "parentSignature"); err != nil {
		return nil, err
	}
	if sub.ApplicantSignature, err = s.readUpload(r, "applicantSignature"); err != nil {
		return nil, err
	}

	return sub, nil
}

// readUpload pulls one file part. A missing part yields an empty upload so
// validation can report the field by name instead of failing the parse.
func (s *Server) readUpload(r *http.Request, field string) (models.FileUpload, error) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return models.FileUpload{}, nil
	}
	if err != nil {
		return models.FileUpload{}, fmt.Errorf("invalid file part %s: %w", field, err)
	}
	defer file.Close()

	// Read one byte past the limit so oversize files are detected without
	// buffering them whole.
	data, err := io.ReadAll(io.LimitReader(file, s.uploadMaxBytes+1))
	if err != nil {
		return models.FileUpload{}, fmt.Errorf("failed to read file part %s: %w", field, err)
	}

	return models.FileUpload{Filename: header.Filename, Data: data}, nil
}
