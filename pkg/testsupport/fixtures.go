// Package testsupport provides shared fixtures for package tests: a
// realistic gas-cylinder inspection template exercising choice fields,
// numeric constraints, and conditional visibility.
package testsupport

import (
	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/template"
)

// CylinderTemplate returns the inspection template used across the test
// suites. Field ids follow the campo_N convention of the original paper
// forms these checks were migrated from.
func CylinderTemplate() template.Template {
	minPressure := 0.0
	maxPressure := 5000.0

	return template.Template{
		ID:        "tpl-cylinder",
		Name:      "Inspección de cilindro",
		Version:   1,
		Active:    true,
		CreatedBy: "admin",
		Fields: []template.Field{
			{
				ID:      "sec_general",
				Type:    template.FieldTypeSectionHeader,
				Label:   "Datos generales",
				Order:   1,
				Section: "general",
			},
			{
				ID:       "campo_1",
				Type:     template.FieldTypeShortText,
				Label:    "Número de serie",
				Required: true,
				Order:    2,
				Section:  "general",
				Validation: &template.Constraints{
					Pattern: `^[A-Z]{2}-\d{4,8}$`,
					Message: "el número de serie debe tener el formato XX-0000",
				},
			},
			{
				ID:       "campo_5",
				Type:     template.FieldTypeDate,
				Label:    "Fecha de inspección",
				Required: true,
				Order:    3,
				Section:  "general",
			},
			{
				ID:      "presion",
				Type:    template.FieldTypeNumber,
				Label:   "Presión (psi)",
				Order:   4,
				Section: "medidas",
				Validation: &template.Constraints{
					Min: &minPressure,
					Max: &maxPressure,
				},
			},
			{
				ID:       "campo_9",
				Type:     template.FieldTypeRadio,
				Label:    "¿Apto para uso?",
				Required: true,
				Options:  []string{"Sí", "No"},
				Order:    5,
				Section:  "resultado",
			},
			{
				ID:       "campo_10",
				Type:     template.FieldTypeLongText,
				Label:    "Motivo de rechazo",
				Required: true,
				Order:    6,
				Section:  "resultado",
				Rule: &template.ConditionalRule{
					Conditions: []template.Condition{
						{FieldID: "campo_9", Operator: template.OperatorEquals, Value: "No"},
					},
				},
			},
			{
				ID:      "defectos",
				Type:    template.FieldTypeCheckbox,
				Label:   "Defectos observados",
				Options: []string{"óxido", "abolladura", "fuga", "válvula dañada"},
				Order:   7,
				Section: "resultado",
			},
			{
				ID:      "evidencia",
				Type:    template.FieldTypeFile,
				Label:   "Evidencia fotográfica",
				Order:   8,
				Section: "resultado",
				Rule: &template.ConditionalRule{
					Combinator: template.CombinatorOr,
					Conditions: []template.Condition{
						{FieldID: "campo_9", Operator: template.OperatorEquals, Value: "No"},
						{FieldID: "defectos", Operator: template.OperatorIsNotEmpty},
					},
				},
			},
		},
	}
}

// PassingAnswers returns a complete answer set for CylinderTemplate with the
// cylinder marked fit for use.
func PassingAnswers() answers.Map {
	return answers.Map{
		"campo_1": answers.Text("AB-12345"),
		"campo_5": answers.Text("2026-08-30"),
		"presion": answers.Number(3000),
		"campo_9": answers.Text("Sí"),
	}
}
