package res

// AboutContent contains the Markdown content for the About dialog.
const AboutContent = `A real-time audio visualiser built with Go and Fyne.

**Modes:**
- Bars: one bar per frequency bin
- Circles: bins arranged around a ring
- Waves: a single line across the spectrum

Bass boost inserts a low-shelf filter and overlays the bass band in blue.
Plays MP3, WAV, Ogg Vorbis and FLAC files.
`
