// Package form implements the three-step profile form: contact and personal
// details, then financial and category details, then documents and review.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"sahayakseva/backend/models"
)

const (
	StepPersonal  = 1
	StepFinancial = 2
	StepDocuments = 3
)

var (
	ErrLastStep     = errors.New("already on the last step")
	ErrUnknownField = errors.New("unknown form field")
)

// ValidationError blocks a transition or a submit. Fields holds the json names
// of the offending fields.
type ValidationError struct {
	Step    int
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
}

// Draft is the form as typed. Numeric fields stay nil until they hold a number.
type Draft struct {
	FullName      string
	Email         string
	Password      string
	Gender        string
	Age           *int
	MaritalStatus string
	FamilyIncome  *int
	Caste         string
	AadhaarNumber string
	PANNumber     string
	State         string
	District      string
	FirebaseID    string
	// AadhaarUpload names an attached card image. The step check echoes it
	// back; it is never part of the submitted profile.
	AadhaarUpload string
}

type requirement struct {
	name    string
	present func(*Draft) bool
}

func text(get func(*Draft) string) func(*Draft) bool {
	return func(d *Draft) bool { return strings.TrimSpace(get(d)) != "" }
}

var (
	reqFullName      = requirement{"fullName", text(func(d *Draft) string { return d.FullName })}
	reqGender        = requirement{"gender", text(func(d *Draft) string { return d.Gender })}
	reqAge           = requirement{"age", func(d *Draft) bool { return d.Age != nil }}
	reqMaritalStatus = requirement{"maritalStatus", text(func(d *Draft) string { return d.MaritalStatus })}
	reqFamilyIncome  = requirement{"familyIncome", func(d *Draft) bool { return d.FamilyIncome != nil }}
	reqCaste         = requirement{"caste", text(func(d *Draft) string { return d.Caste })}
	reqState         = requirement{"state", text(func(d *Draft) string { return d.State })}
	reqAadhaar       = requirement{"aadhaarNumber", text(func(d *Draft) string { return d.AadhaarNumber })}
)

var stepRequirements = map[int][]requirement{
	StepPersonal:  {reqFullName, reqGender, reqAge, reqMaritalStatus},
	StepFinancial: {reqFamilyIncome, reqCaste, reqState},
}

var submitRequirements = []requirement{
	reqFullName, reqGender, reqAge, reqMaritalStatus, reqFamilyIncome, reqAadhaar, reqCaste, reqState,
}

func missing(d *Draft, reqs []requirement) []string {
	var out []string
	for _, r := range reqs {
		if !r.present(d) {
			out = append(out, r.name)
		}
	}
	return out
}

type Engine struct {
	step  int
	draft Draft
}

// New starts at step 1, prefilled from initial when editing an existing profile.
func New(initial *models.UserProfile) *Engine {
	e := &Engine{step: StepPersonal}
	if initial != nil {
		age, income := initial.Age, initial.FamilyIncome
		e.draft = Draft{
			FullName:      initial.FullName,
			Email:         initial.Email,
			Gender:        string(initial.Gender),
			Age:           &age,
			MaritalStatus: string(initial.MaritalStatus),
			FamilyIncome:  &income,
			Caste:         string(initial.Caste),
			AadhaarNumber: initial.AadhaarNumber,
			PANNumber:     initial.PANNumber,
			State:         initial.State,
			District:      initial.District,
			FirebaseID:    initial.FirebaseID,
		}
	}
	return e
}

func (e *Engine) Step() int    { return e.step }
func (e *Engine) Draft() Draft { return e.draft }

// parseNumber mirrors a number input: anything that is not an integer leaves the field empty.
func parseNumber(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

// Set records one typed value, keyed by the field's json name.
func (e *Engine) Set(field, value string) error {
	d := &e.draft
	switch field {
	case "fullName":
		d.FullName = value
	case "email":
		d.Email = value
	case "password":
		d.Password = value
	case "gender":
		d.Gender = value
	case "age":
		d.Age = parseNumber(value)
	case "maritalStatus":
		d.MaritalStatus = value
	case "familyIncome":
		d.FamilyIncome = parseNumber(value)
	case "caste":
		d.Caste = value
	case "aadhaarNumber":
		d.AadhaarNumber = value
	case "panNumber":
		d.PANNumber = strings.ToUpper(value)
	case "state":
		d.State = value
	case "district":
		d.District = value
	case "aadhaarUpload":
		d.AadhaarUpload = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// SetAll applies every value in fields; the first unknown field aborts.
func (e *Engine) SetAll(fields map[string]string) error {
	for k, v := range fields {
		if err := e.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Advance moves to the next step once the current step's required fields are present.
func (e *Engine) Advance() error {
	if e.step >= StepDocuments {
		return ErrLastStep
	}
	if m := missing(&e.draft, stepRequirements[e.step]); len(m) > 0 {
		return &ValidationError{Step: e.step, Fields: m, Message: MsgRequired}
	}
	e.step++
	return nil
}

// Retreat goes back one step without validating.
func (e *Engine) Retreat() {
	if e.step > StepPersonal {
		e.step--
	}
}

// Submit validates the whole form regardless of the current step and hands
// the normalized profile to handler. What happens next is the handler's call.
func (e *Engine) Submit(handler func(models.UserProfile) error) error {
	d := &e.draft
	if m := missing(d, submitRequirements); len(m) > 0 {
		return &ValidationError{Step: e.step, Fields: m, Message: MsgRequired}
	}
	aadhaar := StripSpaces(d.AadhaarNumber)
	if !ValidAadhaar(aadhaar) {
		return &ValidationError{Step: e.step, Fields: []string{"aadhaarNumber"}, Message: MsgAadhaar}
	}
	if d.PANNumber != "" && !ValidPAN(d.PANNumber) {
		return &ValidationError{Step: e.step, Fields: []string{"panNumber"}, Message: MsgPAN}
	}

	p := models.UserProfile{
		FullName:      strings.TrimSpace(d.FullName),
		Email:         strings.TrimSpace(d.Email),
		Password:      d.Password,
		Gender:        models.Gender(d.Gender),
		Age:           *d.Age,
		MaritalStatus: models.MaritalStatus(d.MaritalStatus),
		FamilyIncome:  *d.FamilyIncome,
		Caste:         models.Caste(d.Caste),
		AadhaarNumber: aadhaar,
		PANNumber:     d.PANNumber,
		State:         d.State,
		District:      strings.TrimSpace(d.District),
		FirebaseID:    d.FirebaseID,
	}
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return &ValidationError{Step: e.step, Fields: fields, Message: "Please check the highlighted fields"}
		}
		return err
	}
	return handler(p)
}

// CheckSignup applies the account checks made before registering: credentials
// and district are required on sign-up even though profile edits skip them.
func CheckSignup(p models.UserProfile) error {
	var msgs []string
	if strings.TrimSpace(p.Email) == "" {
		msgs = append(msgs, "Email is required")
	}
	if p.Password == "" {
		msgs = append(msgs, "Password is required")
	} else if len(p.Password) < 6 {
		msgs = append(msgs, "Password must be at least 6 characters")
	}
	if strings.TrimSpace(p.District) == "" {
		msgs = append(msgs, "District is required")
	}
	if len(msgs) == 0 {
		return nil
	}
	return &ValidationError{Step: StepDocuments, Fields: nil, Message: strings.Join(msgs, "; ")}
}
