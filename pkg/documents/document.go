package documents

// DocTypeIntroduceGoods is the only document type this client submits.
const DocTypeIntroduceGoods = "LP_INTRODUCE_GOODS"

// DateLayout is the registry's date format for all date fields.
const DateLayout = "2006-01-02"

// Document is a goods introduction document.
// It is treated as an immutable value once built.
//
// `validate` tags hold the presence rules every submission must pass.
// `strict` tags hold the registry's format rules, checked by ValidateStrict.
type Document struct {
	// Description holds the participant identity block.
	Description Description `json:"description"`

	// DocID is the client-side document identifier.
	DocID string `json:"doc_id" validate:"required"`

	// DocStatus is the document status as known to the client.
	DocStatus string `json:"doc_status"`

	// DocType is DocTypeIntroduceGoods for every document this client builds.
	DocType string `json:"doc_type" validate:"required" strict:"doctype"`

	// ImportRequest marks goods imported into the country.
	ImportRequest bool `json:"importRequest"`

	// OwnerINN is the taxpayer number of the goods owner.
	OwnerINN string `json:"owner_inn" validate:"required" strict:"inn"`

	// ParticipantINN is the taxpayer number of the submitting participant.
	ParticipantINN string `json:"participant_inn" validate:"required" strict:"inn"`

	// ProducerINN is the taxpayer number of the producer.
	ProducerINN string `json:"producer_inn" validate:"required" strict:"inn"`

	// ProductionDate is the production date (YYYY-MM-DD).
	ProductionDate string `json:"production_date" validate:"required" strict:"isodate"`

	// ProductionType is the production type code.
	ProductionType string `json:"production_type" validate:"required"`

	// Products lists the goods being introduced. At least one is required.
	Products []Product `json:"products" validate:"required,min=1,dive" strict:"dive"`

	// RegDate is the registration date (YYYY-MM-DD), if already registered.
	RegDate string `json:"reg_date" strict:"omitempty,isodate"`

	// RegNumber is the registration number, if already registered.
	RegNumber string `json:"reg_number"`
}

// Description is the nested participant block of a Document.
type Description struct {
	ParticipantINN string `json:"participantInn" strict:"omitempty,inn"`
}

// Product is a single labeled product entry.
type Product struct {
	CertificateDocument       string `json:"certificate_document"`
	CertificateDocumentDate   string `json:"certificate_document_date" strict:"omitempty,isodate"`
	CertificateDocumentNumber string `json:"certificate_document_number"`
	OwnerINN                  string `json:"owner_inn" strict:"omitempty,inn"`
	ProducerINN               string `json:"producer_inn" strict:"omitempty,inn"`
	ProductionDate            string `json:"production_date" strict:"omitempty,isodate"`
	TNVEDCode                 string `json:"tnved_code" validate:"required"`
	UITCode                   string `json:"uit_code" strict:"required_without=UITUCode"`
	UITUCode                  string `json:"uitu_code" strict:"required_without=UITCode"`
}

// Envelope pairs a document with the signature it is submitted with.
type Envelope struct {
	Document  Document `json:"document"`
	Signature string   `json:"signature"`
}
