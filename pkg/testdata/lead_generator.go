package testdata

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/callforge/callforge/pkg/models"
)

// GeneratorConfig controls the shape of a generated lead batch
type GeneratorConfig struct {
	Count       int
	UserID      string
	MinScore    int
	MaxScore    int
	MinPriority int
	MaxPriority int
	// ContactedChance is the fraction of leads that already have
	// interaction history (0.0 to 1.0)
	ContactedChance float64
	Seed            int64
}

// DefaultConfig returns a sensible demo-sized batch
func DefaultConfig(userID string) GeneratorConfig {
	return GeneratorConfig{
		Count:           50,
		UserID:          userID,
		MinScore:        0,
		MaxScore:        100,
		MinPriority:     1,
		MaxPriority:     5,
		ContactedChance: 0.4,
	}
}

var leadSources = []string{
	"Website", "Referral", "Cold Call", "Social Media",
	"Trade Show", "csv_import", "excel_import",
}

var contactMethods = []string{"phone", "email", "sms"}

var callOutcomes = []string{
	models.OutcomeInterested, models.OutcomeNotInterested,
	models.OutcomeCallbackRequested,
}

// GenerateLeads produces a batch of realistic leads for demos and
// seeding. All leads are stamped with cfg.UserID.
func GenerateLeads(cfg GeneratorConfig) []models.Lead {
	faker := gofakeit.New(cfg.Seed)

	if cfg.Count <= 0 {
		cfg.Count = 50
	}
	if cfg.MaxScore <= cfg.MinScore {
		cfg.MinScore, cfg.MaxScore = 0, 100
	}
	if cfg.MaxPriority <= cfg.MinPriority {
		cfg.MinPriority, cfg.MaxPriority = 1, 5
	}

	leads := make([]models.Lead, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		person := faker.Person()
		company := faker.Company()

		lead := models.Lead{
			Name:                   person.FirstName + " " + person.LastName,
			Email:                  faker.Email(),
			Phone:                  faker.Phone(),
			Company:                company,
			Status:                 faker.RandomString(models.LeadStatuses),
			Source:                 faker.RandomString(leadSources),
			Priority:               faker.Number(cfg.MinPriority, cfg.MaxPriority),
			LeadScore:              faker.Number(cfg.MinScore, cfg.MaxScore),
			ConversionProbability:  faker.Float64Range(0, 1),
			UserID:                 cfg.UserID,
			Timezone:               faker.TimeZoneRegion(),
			PreferredContactMethod: faker.RandomString(contactMethods),
			EstimatedValue:         faker.Float64Range(500, 50000),
		}

		if faker.Float64Range(0, 1) < cfg.ContactedChance {
			applyInteractionHistory(faker, &lead)
		}

		leads = append(leads, lead)
	}
	return leads
}

// GenerateCallLogs produces call records referencing the given leads,
// useful for populating the call history views.
func GenerateCallLogs(cfg GeneratorConfig, leads []models.Lead) []models.CallLog {
	faker := gofakeit.New(cfg.Seed)

	logs := make([]models.CallLog, 0, len(leads))
	for _, lead := range leads {
		if lead.InteractionCount == 0 {
			continue
		}
		logs = append(logs, models.CallLog{
			LeadID:   lead.ID,
			AgentID:  cfg.UserID,
			UserID:   cfg.UserID,
			CallType: "outbound",
			CallStatus: faker.RandomString([]string{
				models.CallStatusAnswered, models.CallStatusNoAnswer, models.CallStatusFailed,
			}),
			Duration:  faker.Number(30, 900),
			Notes:     faker.Sentence(8),
			CreatedAt: faker.DateRange(time.Now().AddDate(0, -1, 0), time.Now()),
		})
	}
	return logs
}

func applyInteractionHistory(faker *gofakeit.Faker, lead *models.Lead) {
	contacted := faker.DateRange(time.Now().AddDate(0, 0, -30), time.Now())
	lead.LastContactDate = &contacted
	lead.InteractionCount = faker.Number(1, 8)
	lead.CallOutcome = faker.RandomString(callOutcomes)

	if faker.Bool() {
		lead.LastInteractionType = "call"
	} else {
		lead.LastInteractionType = "email"
		lead.EmailHistory = models.EmailEvents{{
			Subject:      fmt.Sprintf("Following up with %s", lead.Company),
			Content:      faker.Paragraph(1, 3, 12, " "),
			SentAt:       contacted,
			TemplateUsed: "Follow-Up",
		}}
	}

	if lead.CallOutcome == "callback_requested" {
		followUp := faker.DateRange(time.Now(), time.Now().AddDate(0, 0, 14))
		lead.NextFollowUpDate = &followUp
	}
}
