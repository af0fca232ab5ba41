// Command subfetch downloads subtitles for local video files by matching
// them against the OpenSubtitles catalog with a content fingerprint.
package main
