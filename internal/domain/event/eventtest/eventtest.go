// Package eventtest provides event configurations for tests.
package eventtest

import (
	"github.com/opencrvs/crvs-search/internal/domain/event"
	"github.com/opencrvs/crvs-search/internal/domain/event/conditional"
	"github.com/opencrvs/crvs-search/internal/domain/event/field"
)

// Field ids of the Birth fixture.
const (
	ChildName       field.ID = "child.name"
	ChildDOB        field.ID = "child.dob"
	ChildGender     field.ID = "child.gender"
	ChildAddress    field.ID = "child.address"
	ApplicantName   field.ID = "applicant.name"
	ApplicantEmail  field.ID = "applicant.email"
	ApplicantPhone  field.ID = "applicant.phone"
	ApplicantID     field.ID = "applicant.idNumber"
	MotherIDType    field.ID = "mother.idType"
	MotherID        field.ID = "mother.idNumber"
	MotherName      field.ID = "mother.name"
	AnyID           field.ID = "mother.anyId"
	CorrectionNotes field.ID = "correction.reason"
	ReviewHeader    field.ID = "review.header"
)

// ShowWhenNationalID shows a field only while mother.idType is NATIONAL_ID.
const ShowWhenNationalID = `{
  "type": "object",
  "properties": {
    "$form": {
      "type": "object",
      "properties": {"mother.idType": {"const": "NATIONAL_ID"}},
      "required": ["mother.idType"]
    }
  }
}`

// HideFromReview is a DISPLAY_ON_REVIEW schema that never matches.
const HideFromReview = `{"not": {}}`

const phoneRule = `{
  "properties": {
    "$form": {
      "properties": {"applicant.phone": {"type": "string", "pattern": "^0[0-9]{9}$"}}
    }
  }
}`

// PhoneMessage is the validation message of the applicant phone rule.
const PhoneMessage = "Must be a valid 10 digit phone number starting with 0"

// Birth returns a birth event with declaration, advanced search and
// correction configuration.
func Birth() event.Config {
	return event.Config{
		ID:    "birth",
		Label: "Birth declaration",
		Declaration: event.Declaration{Pages: []event.Page{
			{
				ID: "child",
				Fields: []field.Config{
					{ID: ReviewHeader, Type: field.PageHeader, Label: "Child details"},
					{ID: ChildName, Type: field.Name, Label: "Child's name", Required: true,
						Configuration: &field.Configuration{Name: &field.NameConfiguration{
							Firstname: field.SubField{Required: true},
							Surname:   field.SubField{Required: true},
						}}},
					{ID: ChildDOB, Type: field.Date, Label: "Date of birth", Required: true},
					{ID: ChildGender, Type: field.Select, Label: "Sex", Options: []field.Option{
						{Value: "male", Label: "Male"},
						{Value: "female", Label: "Female"},
					}},
					{ID: ChildAddress, Type: field.Address, Label: "Place of birth",
						Configuration: &field.Configuration{Fields: []string{"country", "province", "district"}}},
				},
			},
			{
				ID: "applicant",
				Fields: []field.Config{
					{ID: ApplicantName, Type: field.Name, Label: "Applicant's name"},
					{ID: ApplicantEmail, Type: field.Email, Label: "Email"},
					{ID: ApplicantPhone, Type: field.Phone, Label: "Phone number",
						Validation: []field.ValidationRule{{Message: PhoneMessage, Validator: conditional.MustSchema(phoneRule)}}},
					{ID: ApplicantID, Type: field.IDNumber, Label: "Applicant ID"},
				},
			},
			{
				ID: "mother",
				Fields: []field.Config{
					{ID: MotherName, Type: field.Name, Label: "Mother's name"},
					{ID: MotherIDType, Type: field.Select, Label: "Type of ID", Options: []field.Option{
						{Value: "NATIONAL_ID", Label: "National ID"},
						{Value: "NONE", Label: "None"},
					}},
					{ID: MotherID, Type: field.IDNumber, Label: "Mother's ID",
						Conditionals: []conditional.Conditional{
							{Type: conditional.Show, Conditional: conditional.MustSchema(ShowWhenNationalID)},
						}},
				},
			},
		}},
		AdvancedSearch: []event.AdvancedSearchSection{
			{
				ID:    "registration",
				Title: "Registration details",
				Fields: []field.SearchField{
					{FieldID: event.FieldRegisteredAtLocation},
					{FieldID: event.FieldRegisteredAt},
					{FieldID: event.FieldStatus},
					{FieldID: event.FieldUpdatedAt},
				},
			},
			{
				ID:    "child",
				Title: "Child details",
				Fields: []field.SearchField{
					{FieldID: ChildName},
					{FieldID: ChildDOB, Config: field.SearchConfig{Type: field.Range}},
					{FieldID: ChildGender},
					{FieldID: ChildAddress},
				},
			},
			{
				ID:    "applicant",
				Title: "Applicant details",
				Fields: []field.SearchField{
					{FieldID: ApplicantName},
					{FieldID: AnyID, Type: field.IDNumber, Label: "Any ID number", Config: field.SearchConfig{
						Type:         field.Exact,
						SearchFields: []field.ID{MotherID, ApplicantID},
					}},
				},
			},
		},
		Actions: []event.ActionConfig{
			{
				Type:  event.ActionRequestCorrection,
				Label: "Correct record",
				Pages: []event.Page{{
					ID: "correction",
					Fields: []field.Config{
						{ID: CorrectionNotes, Type: field.TextArea, Label: "Reason for correction"},
					},
				}},
			},
		},
	}
}

// Death returns a smaller death event sharing the applicant page with Birth.
func Death() event.Config {
	birth := Birth()
	return event.Config{
		ID:    "death",
		Label: "Death declaration",
		Declaration: event.Declaration{Pages: []event.Page{
			{
				ID: "deceased",
				Fields: []field.Config{
					{ID: "deceased.name", Type: field.Name, Label: "Deceased's name"},
					{ID: "deceased.nid", Type: field.IDNumber, Label: "Deceased's ID"},
					{ID: "deceased.dod", Type: field.Date, Label: "Date of death"},
				},
			},
			birth.Declaration.Pages[1],
		}},
		AdvancedSearch: []event.AdvancedSearchSection{{
			ID:     "deceased",
			Fields: []field.SearchField{{FieldID: "deceased.name"}, {FieldID: event.FieldStatus}},
		}},
	}
}
