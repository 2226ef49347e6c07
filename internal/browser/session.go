// Package browser drives a real browser through Playwright: scanning
// forms into field descriptors, writing resolved values back, and
// finding the page's advance action for auto-apply.
package browser

import (
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/jobfiller/jobfiller/internal/logging"
)

var (
	pwOnce     sync.Once
	pwInstance *playwright.Playwright
	pwErr      error
)

// getPlaywright returns the singleton Playwright instance, installing
// browser binaries on first use
func getPlaywright() (*playwright.Playwright, error) {
	pwOnce.Do(func() {
		if err := playwright.Install(); err != nil {
			pwErr = fmt.Errorf("failed to install playwright browsers: %w", err)
			return
		}
		pw, err := playwright.Run()
		if err != nil {
			pwErr = fmt.Errorf("failed to start playwright: %w", err)
			return
		}
		pwInstance = pw
	})
	return pwInstance, pwErr
}

// Session owns one browser page for the duration of a fill run
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	mu         sync.Mutex
	popupCount int
	advanceIdx int

	log logging.Tagged
}

// Launch starts a browser and opens a blank page
func Launch(headless bool) (*Session, error) {
	pw, err := getPlaywright()
	if err != nil {
		return nil, err
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext()
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	s := &Session{
		pw:         pw,
		browser:    browser,
		context:    context,
		page:       page,
		advanceIdx: -1,
		log:        logging.WithTag("Browser"),
	}

	// Count pages the site opens on its own; the auto-apply loop uses
	// this to enforce its tab cap
	context.OnPage(func(p playwright.Page) {
		s.mu.Lock()
		s.popupCount++
		s.mu.Unlock()
		s.log.Infof("New tab opened: %s", p.URL())
	})

	return s, nil
}

// Open navigates to url and waits for the DOM to settle
func (s *Session) Open(url string) error {
	timeout := 30 * time.Second
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// URL returns the current page address
func (s *Session) URL() string {
	return s.page.URL()
}

// PopupCount returns how many extra tabs the site has opened
func (s *Session) PopupCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popupCount
}

// Close shuts the browser down. The shared Playwright driver stays up
// for later sessions.
func (s *Session) Close() error {
	if s.browser != nil {
		return s.browser.Close()
	}
	return nil
}
