package logging

import "strings"

// FormatSubject builds the video/session subject string used in console output.
// Session identifiers are shortened to their first eight characters.
func FormatSubject(video, session string) string {
	video = strings.TrimSpace(video)
	session = strings.TrimSpace(session)
	if len(session) > 8 {
		session = session[:8]
	}
	parts := make([]string, 0, 2)
	if video != "" {
		parts = append(parts, video)
	}
	if session != "" {
		parts = append(parts, session)
	}
	return strings.Join(parts, " · ")
}
