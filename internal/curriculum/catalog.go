// Package curriculum holds the static subject catalog keyed by grade level,
// strand, and TVL specialization. It is a pure lookup table with no state.
package curriculum

import (
	"fmt"

	"github.com/mnhs-dev/student-record-api/internal/models"
)

// SubjectMAPEH is the derived composite subject. Its grade is never entered
// directly; it is computed from the constituent quarter scores.
const SubjectMAPEH = "MAPEH"

// MAPEHConstituents lists the subjects whose quarter scores feed the
// MAPEH composite, in catalog order.
var MAPEHConstituents = []string{
	"Music",
	"Arts",
	"PE (Physical Education)",
	"Health",
}

var juniorHighCore = []string{
	"Filipino",
	"English",
	"Mathematics",
	"Science",
	"Araling Panlipunan (Social Studies)",
	"Edukasyon sa Pagpapakatao (EsP) - Values Education",
	"Edukasyong Pantahanan at Pangkabuhayan (EPP) - Technical-Vocational Education",
	"Mother Tongue",
	"Technology and Livelihood Education (TLE)",
	SubjectMAPEH,
	"Music",
	"Arts",
	"PE (Physical Education)",
	"Health",
}

var seniorHighCore = []string{
	"Oral Communication",
	"Reading and Writing",
	"Komunikasyon at Pananaliksik sa Wika at Kulturang Pilipino",
	"Pagbasa at Pagsusuri ng Iba't Ibang Teksto Tungo sa Pananaliksik",
	"21st Century Literature from the Philippines and the World",
	"Contemporary Philippine Arts from the Regions",
	"Media and Information Literacy",
	"General Mathematics",
	"Statistics and Probability",
	"Earth and Life Science",
	"Physical Science",
	"Personal Development",
	"Understanding Culture, Society, and Politics",
	"Introduction to the Philosophy of the Human Person",
	"Physical Education and Health",
	"English for Academic and Professional Purposes",
	"Practical Research 1",
	"Practical Research 2",
	"Pagsulat sa Filipino sa Piling Larangan (Akademik, Isports, Sining at Tech-Voc)",
	"Empowerment Technologies (for the Strand)",
	"Entrepreneurship",
	"Inquiries, Investigations, and Immersion",
}

var strandSubjects = map[models.Strand][]string{
	models.StrandABM: {
		"Business Ethics and Social Responsibility",
		"Fundamentals of Accountancy, Business, and Management 1 & 2",
		"Business Math",
		"Business Finance",
		"Organization and Management",
		"Principles of Marketing",
	},
	models.StrandSTEM: {
		"Pre-Calculus",
		"Basic Calculus",
		"General Biology 1",
		"General Biology 2",
		"General Physics 1",
		"General Physics 2",
		"General Chemistry 1",
		"General Chemistry 2",
	},
	models.StrandGAS: {
		"Humanities 1",
		"Humanities 2",
		"Social Science 1",
		"Social Science 2",
		"Applied Economics",
		"Organization and Management",
		"Disaster Readiness and Risk Reduction",
		"Elective 1 & 2",
		"Work Immersion/Research/Career Advocacy/Culminating Activity",
	},
	models.StrandHUMSS: {
		"Creative Writing / Malikhaing Pagsulat",
		"Introduction to World Religions and Belief Systems",
		"Creative Nonfiction",
		"Trends, Networks, and Critical Thinking in the 21st Century Culture",
		"Philippine Politics and Governance",
		"Community Engagement, Solidarity, and Citizenship",
		"Disciplines and Ideas in the Social Sciences",
		"Disciplines and Ideas in the Applied Social Sciences",
	},
}

var tvlSubjects = map[models.TVLSubOption][]string{
	models.TVLHomeEconomics: {
		"Bread and Pastry Production",
		"Food and Beverage Services",
		"Housekeeping",
		"Local Guiding Services",
		"Tourism Promotion Services",
		"Front Office Services",
		"Beauty Care (Nail Care)",
		"Hairdressing and Barbering",
		"Wellness Massage",
		"Dressmaking and Tailoring",
		"Handicraft (Crafts)",
	},
	models.TVLComputerSystems: {
		"Computer Hardware Servicing",
		"Networking Essentials",
		"Systems Servicing NC II",
		"Basic Electronics",
	},
	models.TVLCookery: {
		"Introduction to Culinary Arts",
		"Food and Kitchen Safety",
		"Food Preparation and Cooking Techniques",
		"Menu Planning and Food Costing",
		"Bread and Pastry Production",
	},
}

// SubjectsFor returns the ordered subject list a student must be graded on
// for the given grade level, strand, and TVL specialization. Strand and
// subOption are ignored for grades 7 to 10 and required for grades 11 to 12
// (subOption only when the strand is TVL).
func SubjectsFor(gradeLevel int, strand *models.Strand, subOption *models.TVLSubOption) ([]string, error) {
	if gradeLevel < 7 || gradeLevel > 12 {
		return nil, fmt.Errorf("unsupported grade level %d", gradeLevel)
	}
	if gradeLevel <= 10 {
		return clone(juniorHighCore), nil
	}
	if strand == nil {
		return nil, fmt.Errorf("grade %d requires a strand", gradeLevel)
	}
	subjects := clone(seniorHighCore)
	if *strand == models.StrandTVL {
		if subOption == nil {
			return nil, fmt.Errorf("TVL strand requires a specialization")
		}
		extra, ok := tvlSubjects[*subOption]
		if !ok {
			return nil, fmt.Errorf("unknown TVL specialization %q", *subOption)
		}
		return append(subjects, extra...), nil
	}
	extra, ok := strandSubjects[*strand]
	if !ok {
		return nil, fmt.Errorf("unknown strand %q", *strand)
	}
	return append(subjects, extra...), nil
}

// IsMAPEHConstituent reports whether the subject feeds the MAPEH composite.
func IsMAPEHConstituent(subject string) bool {
	for _, s := range MAPEHConstituents {
		if s == subject {
			return true
		}
	}
	return false
}

// HasMAPEH reports whether the grade level carries the composite subject.
func HasMAPEH(gradeLevel int) bool {
	return gradeLevel >= 7 && gradeLevel <= 10
}

func clone(subjects []string) []string {
	out := make([]string, len(subjects))
	copy(out, subjects)
	return out
}
