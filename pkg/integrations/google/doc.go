// Package google provides a Google Cloud Translation v2 backend.
//
// Requests use the API key query parameter and translate one target
// language per call. Language codes are mapped onto Google's table
// (zh → zh-CN, zh-tw and zh-hk → zh-TW) and results are keyed by the code
// the caller asked for.
package google
