package flow

// Well-known slots used by the built-in variants.
const (
	SlotDocument      Slot = "document"
	SlotDocumentFront Slot = "document_front"
	SlotDocumentBack  Slot = "document_back"
	SlotSelfie        Slot = "selfie"
	SlotIDType        Slot = "id_type"
)

// Well-known steps used by the built-in variants.
const (
	StepWelcome   Step = "welcome"
	StepIDType    Step = "id-type"
	StepDocument  Step = "document"
	StepFront     Step = "document-front"
	StepBack      Step = "document-back"
	StepSelfie    Step = "selfie"
	StepCapture   Step = "capture"
	StepVerifying Step = "verifying"
	StepDone      Step = "done"
)

// DefaultFlow is the name of the variant used when none is configured.
const DefaultFlow = "standard"

var (
	welcome   = StepDef{ID: StepWelcome, Title: "Welcome"}
	document  = StepDef{ID: StepDocument, Title: "Upload your ID document", Requires: []Slot{SlotDocument}}
	selfie    = StepDef{ID: StepSelfie, Title: "Take a selfie", Requires: []Slot{SlotSelfie}}
	verifying = StepDef{ID: StepVerifying, Title: "Verifying your identity", Verify: true}
	done      = StepDef{ID: StepDone, Title: "Verification complete"}
)

// Presets returns the built-in wizard variants, default first.
func Presets() []Definition {
	return []Definition{
		{
			Name:        "standard",
			Description: "Document and selfie on separate steps",
			Steps:       []StepDef{welcome, document, selfie, verifying, done},
		},
		{
			Name:        "id-type",
			Description: "Choose the kind of ID before uploading it",
			Steps: []StepDef{
				welcome,
				{
					ID:       StepIDType,
					Title:    "Choose your ID type",
					Requires: []Slot{SlotIDType},
					Choices:  []string{"Passport", "National ID card", "Driver's license"},
				},
				document,
				selfie,
				verifying,
				done,
			},
		},
		{
			Name:        "document-only",
			Description: "Document upload without a selfie",
			Steps:       []StepDef{welcome, document, verifying, done},
		},
		{
			Name:        "two-sided",
			Description: "Front and back of the document, then a selfie",
			Steps: []StepDef{
				welcome,
				{ID: StepFront, Title: "Upload the front of your document", Requires: []Slot{SlotDocumentFront}},
				{ID: StepBack, Title: "Upload the back of your document", Requires: []Slot{SlotDocumentBack}},
				selfie,
				verifying,
				done,
			},
		},
		{
			Name:        "single-page",
			Description: "Document and selfie collected on one step",
			Steps: []StepDef{
				welcome,
				{ID: StepCapture, Title: "Upload your document and a selfie", Requires: []Slot{SlotDocument, SlotSelfie}},
				verifying,
				done,
			},
		},
	}
}
