package app

import (
	"errors"
	"fmt"

	"docmerge/internal/compose"
	"docmerge/internal/convert"
)

// Level is the severity of a Notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is what a front end shows in a blocking dialog after an action.
type Notice struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func info(title, format string, args ...any) Notice {
	return Notice{Level: LevelInfo, Title: title, Message: fmt.Sprintf(format, args...)}
}

// Notices for the failure classes a user can hit.
var (
	noticeNoFiles       = Notice{Level: LevelError, Title: "Error", Message: "No files to combine."}
	noticeNoDestination = Notice{Level: LevelError, Title: "Error", Message: "No destination chosen."}
	noticeNoCombined    = Notice{Level: LevelWarning, Title: "No File", Message: "Please combine and save a Word file first."}
	noticeUnavailable   = Notice{Level: LevelError, Title: "Missing Dependency", Message: "PDF conversion requires LibreOffice (soffice) to be installed."}
)

// combineNotice maps a Combine failure to a notice. Library failures are
// reported with the underlying message.
func combineNotice(err error) Notice {
	switch {
	case errors.Is(err, compose.ErrNoFiles):
		return noticeNoFiles
	case errors.Is(err, compose.ErrNoDestination):
		return noticeNoDestination
	default:
		return Notice{Level: LevelError, Title: "Error", Message: fmt.Sprintf("Failed to combine documents:\n%v", err)}
	}
}

func convertNotice(err error) Notice {
	switch {
	case errors.Is(err, ErrConversionDisabled):
		return noticeUnavailable
	case errors.Is(err, convert.ErrAutomationUnavailable):
		n := noticeUnavailable
		n.Message += fmt.Sprintf("\n(%v)", err)
		return n
	case errors.Is(err, ErrNoCombinedOutput):
		return noticeNoCombined
	default:
		return Notice{Level: LevelError, Title: "Error", Message: fmt.Sprintf("Failed to convert to PDF:\n%v", err)}
	}
}
