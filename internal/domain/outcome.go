package domain

// Outcome represents the result of a single contact attempt
type Outcome string

const (
	OutcomeAnswered          Outcome = "answered"
	OutcomeAppointmentBooked Outcome = "appointment_booked"
	OutcomeCallbackRequested Outcome = "callback_requested"
	OutcomeVoicemail         Outcome = "voicemail"
	OutcomeBusy              Outcome = "busy"
	OutcomeNoAnswer          Outcome = "no_answer"
	OutcomeNotInterested     Outcome = "not_interested"
	OutcomeWrongNumber       Outcome = "wrong_number"
)

// KnownOutcomes lists every outcome kind the service accepts from webhooks.
var KnownOutcomes = []Outcome{
	OutcomeAnswered,
	OutcomeAppointmentBooked,
	OutcomeCallbackRequested,
	OutcomeVoicemail,
	OutcomeBusy,
	OutcomeNoAnswer,
	OutcomeNotInterested,
	OutcomeWrongNumber,
}

// IsKnown reports whether o is one of the recognized outcome kinds.
func (o Outcome) IsKnown() bool {
	for _, known := range KnownOutcomes {
		if o == known {
			return true
		}
	}
	return false
}

// OutcomeWeights maps an outcome kind to its signed desirability weight.
// A weight greater than zero counts as a successful contact for
// success-rate statistics.
type OutcomeWeights map[Outcome]int

// WeightFor returns the configured weight for an outcome, or zero for
// unknown outcomes.
func (w OutcomeWeights) WeightFor(o Outcome) int {
	return w[o]
}

// IsSuccess reports whether an outcome counts as a successful contact.
func (w OutcomeWeights) IsSuccess(o Outcome) bool {
	return w[o] > 0
}
