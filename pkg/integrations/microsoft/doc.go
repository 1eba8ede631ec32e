// Package microsoft provides a Microsoft Translator v3 backend.
//
// Requests authenticate with the Ocp-Apim-Subscription-Key and
// Ocp-Apim-Subscription-Region headers. Language codes are mapped onto
// Microsoft's table (zh → zh-Hans, zh-tw → zh-Hant, pt → pt-br,
// sr → sr-Latn) and results are keyed by the code the caller asked for.
package microsoft
