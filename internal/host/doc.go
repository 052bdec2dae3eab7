// Package host runs the equalizer outside a plugin host: it decodes audio
// files, feeds them block by block through an [eq.Engine] driven by an
// [eq.Store], and either writes the result to a WAV file ([Render]) or
// plays it on the default output device ([Player]).
//
// [Processor] is the glue the audio side runs every block: it loads a
// parameter snapshot from the store, filters the block and updates the
// level meter.
package host
