// Package myaudio handles the audio side of the pipeline: microphone
// capture through miniaudio, the bounded hand-off queue between capture and
// processing, assembly of overlapping analysis windows and WAV file input
// for offline analysis.
package myaudio
