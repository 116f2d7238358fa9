// ABOUTME: Audio file package exposing files as numbered packets
// ABOUTME: Provides the File interface with MP3, FLAC and WAV readers
// Package decode opens audio files and reads them as numbered packets of
// 16-bit little-endian PCM, the unit a playback queue consumes.
//
// Supports: MP3 (go-mp3), FLAC (mewkiz/flac), WAV (beep)
//
// MP3 and WAV produce constant-size packets. FLAC produces one packet per
// FLAC frame and fills in packet descriptions on request.
//
// Example:
//
//	file, err := decode.Open(afero.NewOsFs(), "song.flac")
//	format, err := file.Format()
//	n, err := file.ReadPackets(0, 16, buf, true)
package decode
