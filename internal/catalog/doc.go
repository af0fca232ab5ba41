// Package catalog talks to the OpenSubtitles XML-RPC API.
//
// It owns the transport concerns the fetch pipeline treats as a
// collaborator: the authentication handshake, the fingerprint search call,
// and raw payload retrieval. Search results are handed back as loosely typed
// records; normalizing them into candidates is the subtitle package's job.
package catalog
