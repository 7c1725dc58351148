// Package pipeline submits user turns to the agent webhook and reconciles
// the outcome into the conversation store.
//
// A submission moves through: build payload -> attempt 1 -> (retry with
// backoff) -> terminal success or failure. The user turn is recorded in the
// store before any network activity, so a failed exchange still shows in
// the transcript. On terminal failure a synthetic assistant turn with
// IsError set is appended in place of a reply.
//
// Each attempt is one POST with a JSON body and a hard client-side timeout.
// Failures are classified as timeout, HTTP (non-2xx), parse (bad JSON), or
// transport errors; all classes are retried alike, up to the attempt cap,
// with delays doubling from the backoff base. Retries are sequential,
// never parallel, and the last error is what surfaces.
//
// Attachments ride inside the JSON body, base64-encoded, buffered whole
// before the first attempt. The 10 MiB validation cap bounds memory.
package pipeline
