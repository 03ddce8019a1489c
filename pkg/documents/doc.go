// Package documents defines the goods introduction document submitted to the
// ISMP registry, its JSON wire format and its validation rules.
//
// # Wire Format
//
// Field names are the registry's literal keys. Most are lower snake case
// (doc_id, owner_inn, products), with two camel case exceptions kept as the
// registry spells them: importRequest and description.participantInn.
//
// # Envelopes
//
// On disk a document is paired with its signature:
//
//	{
//	  "document": { "doc_id": "...", ... },
//	  "signature": "base64..."
//	}
//
// LoadEnvelope and DecodeEnvelope read this format and reject unknown fields.
//
// # Validation
//
// Validate checks required-field presence before a document consumes rate
// limit capacity; field values are passed through as given. ValidateStrict
// adds the registry's formats (INNs, dates, document type, product codes)
// for offline checking. All violations are reported together in a
// *ValidationError keyed by wire name.
package documents
