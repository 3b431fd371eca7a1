package model

import "time"

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceExperienced  ExperienceLevel = "experienced"
)

type TrainingTime string

const (
	TrainingTimeMorning   TrainingTime = "morning"
	TrainingTimeAfternoon TrainingTime = "afternoon"
	TrainingTimeEvening   TrainingTime = "evening"
)

type Equipment string

const (
	EquipmentBikeTrainer       Equipment = "bike_trainer"
	EquipmentTreadmill         Equipment = "treadmill"
	EquipmentHeartRateMonitor  Equipment = "heart_rate_monitor"
	EquipmentPowerMeter        Equipment = "power_meter"
	EquipmentGPSWatch          Equipment = "gps_watch"
	EquipmentPoolAccess        Equipment = "pool_access"
	EquipmentGymAccess         Equipment = "gym_access"
	EquipmentStrengthEquipment Equipment = "strength_equipment"
)

// DaysOfWeek lists valid values for preferred training / rest days.
var DaysOfWeek = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Disruption is a known interruption of the training schedule (travel, surgery, ...).
type Disruption struct {
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Description string    `json:"description"`
}

// PlanRequest is the wizard accumulator: the progressively-built payload that is
// eventually submitted to the generation backend. Field names match the backend
// wire format.
type PlanRequest struct {
	RaceID          int             `json:"race_id"`
	DaysPerWeek     int             `json:"days_per_week"`
	MaxHoursPerWeek float64         `json:"max_hours_per_week"`
	Experience      ExperienceLevel `json:"years_experience"`

	PreferredTrainingDays []string     `json:"preferred_training_days,omitempty"`
	PreferredRestDays     []string     `json:"preferred_rest_days,omitempty"`
	PreferredTrainingTime TrainingTime `json:"preferred_training_time,omitempty"`

	UpcomingDisruptions []Disruption `json:"upcoming_disruptions,omitempty"`
	InjuryLimitations   []string     `json:"injury_limitations,omitempty"`

	AvailableEquipment      []Equipment `json:"available_equipment,omitempty"`
	SafeOutdoorRoutes       bool        `json:"safe_outdoor_routes"`
	IncludeStrengthTraining bool        `json:"include_strength_training"`
	IncludeCrossTraining    bool        `json:"include_cross_training"`

	// Extra carries step data the wizard itself does not interpret. Keys are
	// preserved verbatim across merges so a newer form field never gets dropped
	// by an older engine.
	Extra map[string]string `json:"extra,omitempty"`
}

// NewPlanRequest seeds the accumulator with the same defaults the form starts from.
func NewPlanRequest() *PlanRequest {
	return &PlanRequest{
		DaysPerWeek:             4,
		MaxHoursPerWeek:         6,
		Experience:              ExperienceIntermediate,
		PreferredRestDays:       []string{"Sunday"},
		SafeOutdoorRoutes:       true,
		IncludeStrengthTraining: true,
		IncludeCrossTraining:    false,
	}
}

// RequestPatch is one step's contribution to the accumulator. Nil fields leave
// the current value untouched.
type RequestPatch struct {
	RaceID          *int
	DaysPerWeek     *int
	MaxHoursPerWeek *float64
	Experience      *ExperienceLevel

	PreferredTrainingDays *[]string
	PreferredRestDays     *[]string
	PreferredTrainingTime *TrainingTime

	UpcomingDisruptions *[]Disruption
	InjuryLimitations   *[]string

	AvailableEquipment      *[]Equipment
	SafeOutdoorRoutes       *bool
	IncludeStrengthTraining *bool
	IncludeCrossTraining    *bool

	Extra map[string]string
}

// Apply merges the patch into the request. Known fields are overwritten when
// set, Extra keys are overwritten per key, everything else is preserved.
func (r *PlanRequest) Apply(p *RequestPatch) {
	if p == nil {
		return
	}
	if p.RaceID != nil {
		r.RaceID = *p.RaceID
	}
	if p.DaysPerWeek != nil {
		r.DaysPerWeek = *p.DaysPerWeek
	}
	if p.MaxHoursPerWeek != nil {
		r.MaxHoursPerWeek = *p.MaxHoursPerWeek
	}
	if p.Experience != nil {
		r.Experience = *p.Experience
	}
	if p.PreferredTrainingDays != nil {
		r.PreferredTrainingDays = *p.PreferredTrainingDays
	}
	if p.PreferredRestDays != nil {
		r.PreferredRestDays = *p.PreferredRestDays
	}
	if p.PreferredTrainingTime != nil {
		r.PreferredTrainingTime = *p.PreferredTrainingTime
	}
	if p.UpcomingDisruptions != nil {
		r.UpcomingDisruptions = *p.UpcomingDisruptions
	}
	if p.InjuryLimitations != nil {
		r.InjuryLimitations = *p.InjuryLimitations
	}
	if p.AvailableEquipment != nil {
		r.AvailableEquipment = *p.AvailableEquipment
	}
	if p.SafeOutdoorRoutes != nil {
		r.SafeOutdoorRoutes = *p.SafeOutdoorRoutes
	}
	if p.IncludeStrengthTraining != nil {
		r.IncludeStrengthTraining = *p.IncludeStrengthTraining
	}
	if p.IncludeCrossTraining != nil {
		r.IncludeCrossTraining = *p.IncludeCrossTraining
	}
	if len(p.Extra) > 0 {
		if r.Extra == nil {
			r.Extra = make(map[string]string, len(p.Extra))
		}
		for k, v := range p.Extra {
			r.Extra[k] = v
		}
	}
}

// Clone returns a deep copy so callers can hand the accumulator out without
// exposing it to mutation.
func (r *PlanRequest) Clone() *PlanRequest {
	cp := *r
	cp.PreferredTrainingDays = append([]string(nil), r.PreferredTrainingDays...)
	cp.PreferredRestDays = append([]string(nil), r.PreferredRestDays...)
	cp.UpcomingDisruptions = append([]Disruption(nil), r.UpcomingDisruptions...)
	cp.InjuryLimitations = append([]string(nil), r.InjuryLimitations...)
	cp.AvailableEquipment = append([]Equipment(nil), r.AvailableEquipment...)
	if r.Extra != nil {
		cp.Extra = make(map[string]string, len(r.Extra))
		for k, v := range r.Extra {
			cp.Extra[k] = v
		}
	}
	return &cp
}

// Validate checks the submission invariants and returns human-readable
// violations. An empty slice means the request may be submitted.
func (r *PlanRequest) Validate() []string {
	var errs []string

	if r.RaceID == 0 {
		errs = append(errs, "Please select a race")
	}
	if r.DaysPerWeek < 1 || r.DaysPerWeek > 7 {
		errs = append(errs, "Training days per week must be between 1 and 7")
	}
	if r.MaxHoursPerWeek <= 0 || r.MaxHoursPerWeek > 30 {
		errs = append(errs, "Max hours per week must be between 0.1 and 30")
	}
	if r.Experience == "" {
		errs = append(errs, "Please select your experience level")
	}
	if len(r.PreferredTrainingDays) > r.DaysPerWeek {
		errs = append(errs, "Cannot have more preferred training days than total training days per week")
	}
	for _, d := range r.UpcomingDisruptions {
		if d.StartDate.IsZero() || d.EndDate.IsZero() || d.Description == "" {
			errs = append(errs, "All disruption fields are required")
			break
		}
		if !d.EndDate.After(d.StartDate) {
			errs = append(errs, "Disruption end date must be after start date")
			break
		}
	}

	return errs
}
