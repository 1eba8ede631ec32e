// Package integrations provides the HTTP plumbing shared by the machine
// translation backends.
//
// # Overview
//
// Each translation service has its own subpackage:
//
//   - [google]: Google Cloud Translation v2
//   - [microsoft]: Microsoft Translator v3
//
// # Client Pattern
//
// Backends embed [Client] and only describe their request and response
// shapes:
//
//	c := microsoft.NewClient(key, region)
//	out, err := c.Translate(ctx, translate.Request{Text: "Hello", Source: "en", Targets: []string{"es"}})
//
// [Client] handles:
//   - JSON encoding of request bodies and decoding of responses
//   - Status mapping ([ErrNotFound], [ErrUnauthorized], [ErrRateLimited], [ErrNetwork])
//   - Retry of transient failures through [httputil.Retry]
//   - HTTP hooks from [observability]
//
// # Adding a New Backend
//
//  1. Create a subpackage: pkg/integrations/<service>/
//  2. Define request and response structs matching the API schema
//  3. Implement translate.Translator on a Client embedding [Client]
//  4. Register it in translate.NewService
//
// [google]: github.com/AbelMSG89/json-synchronized/pkg/integrations/google
// [microsoft]: github.com/AbelMSG89/json-synchronized/pkg/integrations/microsoft
// [httputil.Retry]: github.com/AbelMSG89/json-synchronized/pkg/httputil.Retry
// [observability]: github.com/AbelMSG89/json-synchronized/pkg/observability
package integrations
