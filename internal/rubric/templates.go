package rubric

// Template names.
const (
	TemplateOnsiteReview          = "onsite_review"
	TemplateIncidentDocumentation = "incident_documentation"
)

// Criterion ids shared across templates. Policy for these is global:
// a criterion id maps to the same source and policy in every template.
const (
	CriterionCategory         = "correct_category"
	CriterionSubcategory      = "correct_subcategory"
	CriterionService          = "correct_service"
	CriterionConfigItem       = "correct_ci"
	CriterionOpenedFor        = "opened_for_correct"
	CriterionShortDescription = "short_description_format"
	CriterionIncidentNotes    = "incident_notes"
	CriterionIncidentHandling = "incident_handling"
	CriterionResolutionNotes  = "resolution_notes"
	CriterionSpellingGrammar  = "spelling_grammar"
	CriterionValidation       = "validation_performed"
	CriterionCriticalProcess  = "critical_process_followed"
	CriterionPasswordHandling = "password_handling"
)

// Fixed penalties for the deduction criteria.
const (
	ValidationPenalty      = 15
	CriticalProcessPenalty = 35
)

func policyCriteria() []Criterion {
	return []Criterion{
		{ID: CriterionValidation, Name: "Validation", Source: SourceRule,
			Policy: PolicyDeduction, Penalty: ValidationPenalty},
		{ID: CriterionCriticalProcess, Name: "Critical Process", Source: SourceRule,
			Policy: PolicyDeduction, Penalty: CriticalProcessPenalty},
		{ID: CriterionPasswordHandling, Name: "Password Handling", Source: SourceRule,
			Policy: PolicyAutoFail},
	}
}

// builtinTemplates defines the two scoring schemes: the resolution-focused
// onsite support review (90 points) and the documentation-focused incident
// logging review (70 points).
func builtinTemplates() []Template {
	onsite := Template{
		Name:        TemplateOnsiteReview,
		DisplayName: "Onsite Support Review",
		MaxScore:    90,
		Criteria: append([]Criterion{
			{ID: CriterionCategory, Name: "Category", MaxPoints: 5, Source: SourceNarrative, Policy: PolicyAdditive},
			{ID: CriterionSubcategory, Name: "Subcategory", MaxPoints: 5, Source: SourceNarrative, Policy: PolicyAdditive},
			{ID: CriterionService, Name: "Service", MaxPoints: 5, Source: SourceNarrative, Policy: PolicyAdditive},
			{ID: CriterionConfigItem, Name: "Configuration Item", MaxPoints: 10, Source: SourceNarrative, Policy: PolicyAdditive},
			{ID: CriterionOpenedFor, Name: "Opened For", MaxPoints: 10, Source: SourceRule, Policy: PolicyAdditive},
			{ID: CriterionIncidentNotes, Name: "Incident Notes", MaxPoints: 20, Source: SourceNarrative, Policy: PolicyAdditive},
			{ID: CriterionIncidentHandling, Name: "Incident Handling", MaxPoints: 15, Source: SourceNarrative, Policy: PolicyAdditive},
			{ID: CriterionResolutionNotes, Name: "Resolution Notes", MaxPoints: 20, Source: SourceNarrative, Policy: PolicyAdditive},
		}, policyCriteria()...),
	}

	docs := Template{
		Name:        TemplateIncidentDocumentation,
		DisplayName: "Incident Documentation Review",
		MaxScore:    70,
		Criteria: append([]Criterion{
			{ID: CriterionCategory, Name: "Category", MaxPoints: 5, Source: SourceNarrative, Policy: PolicyAdditive},
			{ID: CriterionSubcategory, Name: "Subcategory", MaxPoints: 5, Source: SourceNarrative, Policy: PolicyAdditive},
			{ID: CriterionService, Name: "Service", MaxPoints: 5, Source: SourceNarrative, Policy: PolicyAdditive},
			{ID: CriterionConfigItem, Name: "Configuration Item", MaxPoints: 10, Source: SourceNarrative, Policy: PolicyAdditive},
			{ID: CriterionShortDescription, Name: "Short Description", MaxPoints: 8, Source: SourceRule, Policy: PolicyAdditive},
			{ID: CriterionOpenedFor, Name: "Opened For", MaxPoints: 10, Source: SourceRule, Policy: PolicyAdditive},
			{ID: CriterionIncidentNotes, Name: "Incident Notes", MaxPoints: 25, Source: SourceNarrative, Policy: PolicyAdditive},
			{ID: CriterionSpellingGrammar, Name: "Spelling/Grammar", MaxPoints: 2, Source: SourceNarrative, Policy: PolicyAdditive},
		}, policyCriteria()...),
	}

	return []Template{onsite, docs}
}
