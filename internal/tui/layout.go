package tui

const (
	minMainWidth     = 40
	minSidebarWidth  = 24
	maxSidebarWidth  = 36
	sidebarGap       = 2
	pageChrome       = 6
	formChrome       = 3
	linesPerGroup    = 2
	minTranscript    = 4
	defaultWinWidth  = 100
	defaultWinHeight = 30
)

// pageLayout splits the window into the form, the chat transcript and the
// optional sidebar.
type pageLayout struct {
	windowWidth      int
	windowHeight     int
	mainWidth        int
	sidebarWidth     int
	formHeight       int
	transcriptHeight int
}

func newPageLayout() pageLayout {
	l := pageLayout{}
	l.Update(defaultWinWidth, defaultWinHeight, false, 1)
	return l
}

func (l *pageLayout) Update(width, height int, sidebar bool, groups int) {
	l.windowWidth = width
	l.windowHeight = height

	l.sidebarWidth = 0
	main := width
	if sidebar {
		l.sidebarWidth = width / 4
		if l.sidebarWidth < minSidebarWidth {
			l.sidebarWidth = minSidebarWidth
		}
		if l.sidebarWidth > maxSidebarWidth {
			l.sidebarWidth = maxSidebarWidth
		}
		main = width - l.sidebarWidth - sidebarGap
	}
	if main < minMainWidth {
		main = minMainWidth
	}
	l.mainWidth = main

	if groups < 1 {
		groups = 1
	}
	l.formHeight = formChrome + groups*linesPerGroup
	if maxForm := height / 2; l.formHeight > maxForm && maxForm >= formChrome+linesPerGroup {
		l.formHeight = maxForm
	}
	l.transcriptHeight = height - pageChrome - l.formHeight
	if l.transcriptHeight < minTranscript {
		l.transcriptHeight = minTranscript
	}
}
