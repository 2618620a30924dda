package models

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "single"
	MaritalMarried  MaritalStatus = "married"
	MaritalDivorced MaritalStatus = "divorced"
	MaritalWidowed  MaritalStatus = "widowed"
)

type Caste string

const (
	CasteGeneral Caste = "general"
	CasteOBC     Caste = "obc"
	CasteSC      Caste = "sc"
	CasteST      Caste = "st"
)

// States lists the state values the profile form offers.
var States = []string{
	"andhra-pradesh", "assam", "bihar", "gujarat", "karnataka", "kerala", "madhya-pradesh",
	"maharashtra", "punjab", "rajasthan", "tamil-nadu", "uttar-pradesh", "west-bengal",
}

// UserProfile is the one record kept per account in the profile store.
// Password is only carried from the sign-up form to account creation and is never serialized.
type UserProfile struct {
	FullName      string        `json:"fullName" validate:"required"`
	Email         string        `json:"email" validate:"omitempty,email"`
	Password      string        `json:"-"`
	Gender        Gender        `json:"gender" validate:"required,oneof=male female other"`
	Age           int           `json:"age" validate:"min=1,max=120"`
	MaritalStatus MaritalStatus `json:"maritalStatus" validate:"required,oneof=single married divorced widowed"`
	FamilyIncome  int           `json:"familyIncome" validate:"min=0"`
	Caste         Caste         `json:"caste" validate:"required,oneof=general obc sc st"`
	AadhaarNumber string        `json:"aadhaarNumber" validate:"aadhaar"`
	PANNumber     string        `json:"panNumber,omitempty" validate:"omitempty,pan"`
	State         string        `json:"state" validate:"indianstate"`
	District      string        `json:"district"`
	FirebaseID    string        `json:"firebaseId,omitempty"`
}

// Account is the identity provider's view of a registered user.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
