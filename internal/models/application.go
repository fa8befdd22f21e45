package models

import (
	"time"
)

// ApplicationForm holds the flat field groups collected by the admission
// form. Asset fields carry durable retrieval URLs once the record is
// finalized; before upload they are empty.
type ApplicationForm struct {
	CandidateName        string `json:"candidateName" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	PermanentAddress     string `json:"permanentAddress" validate:"required"`
	CommunicationAddress string `json:"communicationAddress" validate:"required"`
	DateOfBirth          string `json:"dateOfBirth" validate:"required"`
	Age                  string `json:"age" validate:"required"`
	Gender               string `json:"gender" validate:"required"`
	Nationality          string `json:"nationality" validate:"required"`
	Place                string `json:"place" validate:"required"`
	Religion             string `json:"religion" validate:"required"`
	Community            string `json:"community" validate:"required"`
	Category             string `json:"category" validate:"required"`
	BloodGroup           string `json:"bloodGroup" validate:"required"`
	AadhaarNumber        string `json:"aadhaarNumber" validate:"required,len=12,number"`
	Quota                string `json:"quota" validate:"required"`
	Preference1          string `json:"preference1" validate:"required"`
	Preference2          string `json:"preference2" validate:"required"`
	Preference3          string `json:"preference3" validate:"required"`

	FatherName       string `json:"fatherName" validate:"required"`
	FatherOccupation string `json:"fatherOccupation" validate:"required"`
	FatherMobile     string `json:"fatherMobile" validate:"required,len=10,number"`
	MotherName       string `json:"motherName" validate:"required"`
	MotherOccupation string `json:"motherOccupation" validate:"required"`
	MotherMobile     string `json:"motherMobile" validate:"required,len=10,number"`
	AnnualIncome     string `json:"annualIncome" validate:"required"`
	GuardianName     string `json:"guardianName" validate:"required"`
	GuardianRelation string `json:"guardianRelation" validate:"required"`
	GuardianMobile   string `json:"guardianMobileNumber" validate:"required,len=10,number"`

	LastInstitution string `json:"lastInstitution" validate:"required"`
	BoardOfStudy    string `json:"boardOfStudy" validate:"required"`
	GrandTotal      string `json:"grandTotal" validate:"required"`
	TotalPercentage string `json:"totalPercentage" validate:"required"`
	TotalPCM        string `json:"totalPCM" validate:"required"`
	PCMPercentage   string `json:"pcmPercentage" validate:"required"`

	EntranceRegisterNo string `json:"entranceRegisterNo"`
	EntranceRank       string `json:"entranceRank"`
	SSLCBoard          string `json:"sslcBoard" validate:"required"`
	SSLCPercentage     string `json:"sslcPercentage" validate:"required"`

	Photo              string `json:"photo"`
	ParentSignature    string `json:"parentSignature"`
	ApplicantSignature string `json:"applicantSignature"`

	// AppID is filled in when a persisted record is read back; it is never
	// accepted from form input.
	AppID string `json:"appId,omitempty"`
}

// Subject is one row of the plus-two subject marks table. LocalID only
// identifies the row within a single form; it carries no persisted meaning.
type Subject struct {
	LocalID      int    `json:"localId"`
	Name         string `json:"name"`
	MarkObtained string `json:"markObtained"`
	MaxMark      string `json:"maxMark"`
	Grade        string `json:"grade"`
}

// EntranceMarks is the fixed-shape entrance examination marks block:
// two paper rows and a total row, each with a figures and a words value.
type EntranceMarks struct {
	Paper1Figures string `json:"paper1Figures"`
	Paper1Words   string `json:"paper1Words"`
	Paper2Figures string `json:"paper2Figures"`
	Paper2Words   string `json:"paper2Words"`
	TotalFigures  string `json:"totalFigures"`
	TotalWords    string `json:"totalWords"`
}

// Application is the durable admission record. AppID is assigned exactly
// once by the allocation transaction and never changes afterwards.
type Application struct {
	AppID         string          `json:"appId"`
	CandidateName string          `json:"candidateName"`
	SubmittedAt   time.Time       `json:"submittedAt"`
	Form          ApplicationForm `json:"formData"`
	Subjects      []Subject       `json:"subjects"`
	EntranceMarks *EntranceMarks  `json:"entranceMarks,omitempty"`
}

// HasEntrance reports whether the record carries an entrance examination
// block. Item numbering on the marks page follows this.
func (a *Application) HasEntrance() bool {
	return a.EntranceMarks != nil
}

// FileUpload is a raw uploaded image before it is pushed to object storage.
type FileUpload struct {
	Filename string
	Data     []byte
}

// Empty reports whether no file was supplied for the slot.
func (f FileUpload) Empty() bool {
	return len(f.Data) == 0
}

// Submission is everything the coordinator needs for one submit attempt:
// the flat form fields, the subject rows, the optional entrance block and
// the three raw image uploads.
type Submission struct {
	Form     ApplicationForm
	Subjects []Subject
	Entrance *EntranceMarks

	Photo              FileUpload
	ParentSignature    FileUpload
	ApplicantSignature FileUpload
}
