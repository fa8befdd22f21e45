package templates

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FormTemplate holds the fixed wording of the official paper form: the
// letterhead, the course title block, the declaration and the office-use
// certificate. Everything applicant-specific comes from the record, not
// from here.
type FormTemplate struct {
	CollegeName   string   `yaml:"college_name" json:"college_name"`
	AddressLines  []string `yaml:"address_lines" json:"address_lines"`
	TitleLines    []string `yaml:"title_lines" json:"title_lines"`
	LogoPath      string   `yaml:"logo_path" json:"logo_path"`
	Declaration   string   `yaml:"declaration" json:"declaration"`
	Certificate   string   `yaml:"certificate" json:"certificate"`
	AdmissionLine string   `yaml:"admission_line" json:"admission_line"`
}

// Default returns the built-in form wording, used when no template file is
// configured or the configured one cannot be read.
func Default() *FormTemplate {
	return &FormTemplate{
		CollegeName: "MGM COLLEGE OF ENGINEERING & TECHNOLOGY",
		AddressLines: []string{
			"MGM Technological campus, Pampakuda P.O, Ernakulam-686667, Kerala",
			"Approved by AICTE and Affiliated to APJ Abdul Kalam Technological University, Kerala",
		},
		TitleLines: []string{
			"APPLICATION FOR ADMISSION TO B.TECH DEGREE COURSE 2025-2026",
			"UNDER GOVERNMENT / MANAGEMENT / NRI QUOTA",
		},
		LogoPath:      "./templates/mgm_logo.png",
		Declaration:   "We, the applicant & parent / guardian do hereby declare that all the information furnished above are true and correct and we will obey the rules and regulations of the Institution, if admitted. Also we understand that the admission shall be, subject to satisfying the eligibility norms prescribed by the Statutory Authorities and the state Govt. from time to time.",
		Certificate:   "Certified that the candidate has passed the qualifying examination mentioned and I have verified the original mark list with the entries made above and found correct.",
		AdmissionLine: "The above candidate is admitted Provisionally to ___________________________________________ on _______________________________________ under Government / Management / NRI Quota.",
	}
}

// LoadFromFile reads a form template, filling unset fields from the
// defaults so a partial template stays usable.
func LoadFromFile(path string) (*FormTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form template: %w", err)
	}

	tmpl := Default()
	if err := yaml.Unmarshal(data, tmpl); err != nil {
		return nil, fmt.Errorf("failed to parse form template %s: %w", path, err)
	}

	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid form template %s: %w", path, err)
	}

	return tmpl, nil
}

// Validate rejects templates that would render an unusable document.
func (t *FormTemplate) Validate() error {
	if t.CollegeName == "" {
		return fmt.Errorf("college_name is required")
	}
	if len(t.TitleLines) == 0 {
		return fmt.Errorf("at least one title line is required")
	}
	if t.Declaration == "" {
		return fmt.Errorf("declaration text is required")
	}
	return nil
}
