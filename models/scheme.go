package models

type Category string

const (
	CategoryIncome      Category = "income"
	CategoryGender      Category = "gender"
	CategoryCaste       Category = "caste"
	CategoryAge         Category = "age"
	CategoryAgriculture Category = "agriculture"
	CategoryEducation   Category = "education"
	CategoryHousing     Category = "housing"
)

// Categories is the dashboard tab order, after "all".
var Categories = []Category{
	CategoryIncome, CategoryGender, CategoryCaste, CategoryAge,
	CategoryAgriculture, CategoryEducation, CategoryHousing,
}

type Scheme struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	EligibilityReason string   `json:"eligibilityReason"`
	Category          Category `json:"category"`
}
