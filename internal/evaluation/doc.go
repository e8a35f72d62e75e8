// Package evaluation implements the case evaluation pipeline: prompt
// construction from retrieved context, schema-validated parsing of model
// output with a legacy compatibility adapter, and persistence of the
// resulting evaluation record.
package evaluation
