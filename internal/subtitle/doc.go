// Package subtitle implements the candidate pipeline: normalizing catalog
// search records into candidates, ranking them per requested language,
// deriving output names, and materializing selections onto disk.
//
// The pipeline is a best-effort batch, not a transaction. Each unit of work
// (file, language, candidate) contains its own failure; siblings always
// continue. Per-file stages run strictly in order (fingerprint, search,
// then rank/select/download per language) with no backward transitions.
package subtitle
