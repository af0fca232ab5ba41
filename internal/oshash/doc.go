// Package oshash computes the OpenSubtitles content fingerprint.
//
// The algorithm is public and shared with the catalog service
// (http://trac.opensubtitles.org/projects/opensubtitles/wiki/HashSourceCodes):
// the file size plus the modulo-2^64 sums of the first and last 64 KiB,
// interpreted as little-endian 64-bit words. It must be reproduced
// bit-for-bit or searches return nothing.
package oshash
