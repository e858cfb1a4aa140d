package linkedin

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/ethanbaker/prospector/pkg/engine"
	"github.com/go-rod/rod/lib/proto"
)

// maxNoteLength is the platform's invitation note cap
const maxNoteLength = 280

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?[0-9][0-9 ().\-]{7,}[0-9]`)
)

// SendConnectionRequest opens the profile and sends a connection invitation,
// optionally with a note (truncated to the platform cap)
func (c *Client) SendConnectionRequest(ctx context.Context, profileURL, note string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}

	page, err := c.navigate(ctx, profileURL)
	if err != nil {
		return err
	}
	time.Sleep(1 * time.Second)

	connect, err := c.element(page, `button[aria-label*="Invite"][aria-label*="connect"]`)
	if err != nil {
		connect, err = c.elementR(page, "button", "^Connect$")
	}
	if err != nil {
		// The Connect action can be tucked under the More menu
		if more, err2 := c.elementR(page, "button", "More"); err2 == nil {
			_ = more.Click(proto.InputMouseButtonLeft, 1)
			time.Sleep(500 * time.Millisecond)
			connect, err = c.elementR(page, "div", "^Connect$")
		}
	}
	if err != nil {
		return fmt.Errorf("connect button not found on %s: %w", profileURL, err)
	}

	if err := connect.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click connect: %w", err)
	}
	time.Sleep(1 * time.Second)

	if note != "" {
		if len(note) > maxNoteLength {
			note = note[:maxNoteLength]
		}
		if addNote, err := c.elementR(page, "button", "Add a note"); err == nil {
			_ = addNote.Click(proto.InputMouseButtonLeft, 1)
			if textarea, err := c.element(page, `textarea[name="message"]`); err == nil {
				if err := textarea.Input(note); err != nil {
					log.Printf("[LINKEDIN]: Failed to type invitation note: %v", err)
				}
			}
		}
	}

	send, err := c.elementR(page, "button", "^Send")
	if err != nil {
		send, err = c.element(page, `button[aria-label*="Send"]`)
	}
	if err != nil {
		return fmt.Errorf("send button not found on %s: %w", profileURL, err)
	}
	if err := send.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click send: %w", err)
	}

	log.Printf("[LINKEDIN]: Connection request sent to %s", profileURL)
	return nil
}

// SendDirectMessage opens the profile's message composer and sends a text
// message to an existing connection
func (c *Client) SendDirectMessage(ctx context.Context, profileURL, text string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}

	page, err := c.navigate(ctx, profileURL)
	if err != nil {
		return err
	}
	time.Sleep(1 * time.Second)

	message, err := c.elementR(page, "button", "^Message$")
	if err != nil {
		message, err = c.element(page, `button[aria-label*="Message"]`)
	}
	if err != nil {
		return fmt.Errorf("message button not found on %s: %w", profileURL, err)
	}
	if err := message.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to open message composer: %w", err)
	}
	time.Sleep(1 * time.Second)

	input, err := c.element(page, "div.msg-form__contenteditable")
	if err != nil {
		input, err = c.element(page, `div[contenteditable="true"]`)
	}
	if err != nil {
		return fmt.Errorf("message input not found on %s: %w", profileURL, err)
	}
	if err := input.Input(text); err != nil {
		return fmt.Errorf("failed to type message: %w", err)
	}

	send, err := c.element(page, "button.msg-form__send-button")
	if err != nil {
		send, err = c.elementR(page, "button", "Send")
	}
	if err != nil {
		return fmt.Errorf("send button not found on %s: %w", profileURL, err)
	}
	if err := send.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	log.Printf("[LINKEDIN]: Direct message sent to %s", profileURL)
	return nil
}

// ConnectionStatus opens the profile and classifies the relationship from
// the action buttons present
func (c *Client) ConnectionStatus(ctx context.Context, profileURL string) (engine.ConnectionState, error) {
	if err := c.requireAuth(); err != nil {
		return engine.StateUnknown, err
	}

	page, err := c.navigate(ctx, profileURL)
	if err != nil {
		return engine.StateUnknown, err
	}
	time.Sleep(1 * time.Second)

	// A Message action means the invitation was accepted
	if c.hasElementR(page, "button", "^Message$") || c.hasElement(page, `button[aria-label*="Message"]`) {
		return engine.StateConnected, nil
	}
	if c.hasElementR(page, "button", "Pending") || c.hasElement(page, `button[aria-label*="Pending"]`) {
		return engine.StatePending, nil
	}
	if c.hasElementR(page, "button", "^Connect$") || c.hasElement(page, `button[aria-label*="connect"]`) {
		return engine.StateNotConnected, nil
	}
	return engine.StateUnknown, nil
}

// FetchContactInfo opens the profile's contact-info overlay and scrapes any
// email address and phone number shown
func (c *Client) FetchContactInfo(ctx context.Context, profileURL string) (engine.ContactInfo, error) {
	if err := c.requireAuth(); err != nil {
		return engine.ContactInfo{}, err
	}

	page, err := c.navigate(ctx, strings.TrimSuffix(profileURL, "/")+"/overlay/contact-info/")
	if err != nil {
		return engine.ContactInfo{}, err
	}
	time.Sleep(1 * time.Second)

	section, err := c.element(page, "section.pv-contact-info, div[aria-label*='contact info'], .artdeco-modal")
	if err != nil {
		return engine.ContactInfo{}, fmt.Errorf("contact info overlay not found on %s: %w", profileURL, err)
	}

	text, err := section.Text()
	if err != nil {
		return engine.ContactInfo{}, fmt.Errorf("failed to read contact info: %w", err)
	}

	info := engine.ContactInfo{
		Email: emailPattern.FindString(text),
		Phone: strings.TrimSpace(phonePattern.FindString(text)),
	}
	return info, nil
}
