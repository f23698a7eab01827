package story

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultUserPrompt is the prompt sent with every grant volume request
const DefaultUserPrompt = "Use the provided grantee profile to write a grant volume according to additional instructions."

const granteeProfileURL = "https://gist.github.com/zstone-cai/323e78d0b0e0f9f312105d2c1595bcbd"

// Plan is the story plan configuration understood by the story API
type Plan struct {
	Format              string   `json:"format" yaml:"format"`
	Cot                 bool     `json:"cot" yaml:"cot"`
	Audience            string   `json:"audience" yaml:"audience"`
	ResponseLength      string   `json:"responseLength" yaml:"responseLength"`
	ResponseLanguage    string   `json:"responseLanguage" yaml:"responseLanguage"`
	HeroImage           bool     `json:"heroImage" yaml:"heroImage"`
	Title               bool     `json:"title" yaml:"title"`
	Headers             bool     `json:"headers" yaml:"headers"`
	Paragraphs          bool     `json:"paragraphs" yaml:"paragraphs"`
	Images              bool     `json:"images" yaml:"images"`
	AIImages            bool     `json:"aiImages" yaml:"aiImages"`
	ImageStyle          string   `json:"imageStyle" yaml:"imageStyle"`
	AIGraphs            bool     `json:"aiGraphs" yaml:"aiGraphs"`
	WebGraphs           bool     `json:"webGraphs" yaml:"webGraphs"`
	Metrics             bool     `json:"metrics" yaml:"metrics"`
	Tables              bool     `json:"tables" yaml:"tables"`
	Quotes              bool     `json:"quotes" yaml:"quotes"`
	Tweets              bool     `json:"tweets" yaml:"tweets"`
	TweetCharacterLimit int      `json:"tweetCharacterLimit" yaml:"tweetCharacterLimit"`
	GeneralWebSearch    bool     `json:"generalWebSearch" yaml:"generalWebSearch"`
	AcademicWebSearch   bool     `json:"academicWebSearch" yaml:"academicWebSearch"`
	UsePerplexity       bool     `json:"usePerplexity" yaml:"usePerplexity"`
	RagBudget           string   `json:"ragBudget" yaml:"ragBudget"`
	UserQuery           string   `json:"userQuery,omitempty" yaml:"userQuery,omitempty"`
	CustomInstructions  string   `json:"customInstructions" yaml:"customInstructions"`
	ImageHeight         int      `json:"imageHeight" yaml:"imageHeight"`
	ImageWidth          int      `json:"imageWidth" yaml:"imageWidth"`
	ResponseModel       string   `json:"responseModel" yaml:"responseModel"`
	UserURLs            []string `json:"userUrls" yaml:"userUrls"`
	UserPDFDocuments    []string `json:"userPdfDocuments" yaml:"userPdfDocuments"`
	UserPDFURLs         []string `json:"userPdfUrls" yaml:"userPdfUrls"`
	UserImages          []string `json:"userImages" yaml:"userImages"`
}

// Validate checks the fields the API rejects outright
func (p Plan) Validate() error {
	if p.Format == "" {
		return fmt.Errorf("plan format cannot be empty")
	}
	if p.ResponseModel == "" {
		return fmt.Errorf("plan response model cannot be empty")
	}
	if p.ImageHeight < 0 || p.ImageWidth < 0 {
		return fmt.Errorf("plan image dimensions cannot be negative")
	}
	if p.TweetCharacterLimit < 0 {
		return fmt.Errorf("plan tweet character limit cannot be negative")
	}
	return nil
}

// WithUserQuery returns a copy of the plan carrying the given query
func (p Plan) WithUserQuery(query string) Plan {
	p.UserQuery = query
	return p
}

// basePlan holds the settings shared by every grant volume
func basePlan() Plan {
	return Plan{
		Format:              "custom",
		Audience:            "General",
		ResponseLanguage:    "english",
		Headers:             true,
		Paragraphs:          true,
		ImageStyle:          "auto",
		TweetCharacterLimit: 280,
		RagBudget:           "default",
		ImageHeight:         768,
		ImageWidth:          1344,
		ResponseModel:       "claude-3-5-sonnet-20240620",
		UserURLs:            []string{granteeProfileURL},
		UserPDFDocuments:    []string{},
		UserPDFURLs:         []string{},
		UserImages:          []string{},
	}
}

// AbstractPlan is the one page project abstract
func AbstractPlan() Plan {
	p := basePlan()
	p.ResponseLength = "1 page"
	p.CustomInstructions = "Please generate an abstract of no more than one page summarizing the proposed project, " +
		"including the scope of the project and proposed outcomes. The abstract must include the following sections: " +
		"1) Applicant's name; 2) Designated point of contact's telephone number and email address; 3) Web address; " +
		"4) Project title; 5) Description of the area to be served; 6) Number of participants to be served; " +
		"and 7) Funding level requested."
	return p
}

// TechnicalPlan is the full technical proposal
func TechnicalPlan() Plan {
	p := basePlan()
	p.Cot = true
	p.CustomInstructions = "Please create a Technical Proposal demonstrating your capability to implement the grant project, " +
		"organized with the following sections: 1) **Project Description** (50 points), detailing services in counseling, " +
		"training, access to capital, and knowledge transfer, including defining your geographic area and entrepreneurial " +
		"ecosystem, describing measurable activities to support women entrepreneurs, identifying key stakeholders and partners " +
		"with proof of third-party commitments, explaining how you will engage with SBA resources, and addressing efforts to " +
		"engage women entrepreneurs from underserved communities; 2) **Applicant Capability** (25 points), providing a concise " +
		"summary of your organization's mission, programs, relevant experience, proof of capability including financial and " +
		"management infrastructure, organizational structure with duties and reporting, and one-page biographies or resumes " +
		"of key personnel; 3) **Data Collection and Program Evaluation** (25 points), outlining your data collection plan " +
		"including specific participant data and collection methods, plans to document lessons learned, identification of " +
		"effective service models for potential replication, and how data will inform program delivery; 4) **Applicant " +
		"Budget** (10 points), including the required Standard Forms SF-424 and SF-424A, and a Detailed Expenditure Worksheet " +
		"with detailed justification for all budget items; and 5) **Agency Priority Points** (10 points), addressing at least " +
		"two of SBA's priority areas such as promoting entrepreneurship among returning citizens, supporting rural " +
		"entrepreneurial ecosystems, or increasing women's capacity to access government contracting opportunities, " +
		"describing current efforts, past results, and execution plans through the WBC project. Ensure all required " +
		"attachments, such as proof of third-party commitments and resumes, are included, and incorporate required travel " +
		"costs for key personnel to attend specified events."
	return p
}

var presets = map[string]func() Plan{
	"abstract":  AbstractPlan,
	"technical": TechnicalPlan,
}

// PresetNames lists the built-in plan names
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PlanByName returns a built-in plan
func PlanByName(name string) (Plan, error) {
	build, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Plan{}, fmt.Errorf("unknown plan %q (valid plans: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return build(), nil
}
