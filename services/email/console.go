package emailsvc

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/skillforge/gateway/core"
)

// consoleService writes emails to stdout; used in DEV.
type consoleService struct {
	std *log.Logger
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(std *log.Logger) *consoleService {
	return &consoleService{std: std}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		msg := msg
		go func() {
			if err := msg.Render(); err != nil {
				svc.std.Printf("rendering email: %v", err)
				return
			}
			svc.print(msg)
		}()
	}
}

func (svc consoleService) print(msg *core.EmailMessage) {
	var b strings.Builder
	b.WriteString("\n--- EMAIL ---\n")
	tos := make([]string, 0, len(msg.To))
	for _, to := range msg.To {
		tos = append(tos, to.String())
	}
	fmt.Fprintf(&b, "To: %s\nSubject: %s\n\n%s\n", strings.Join(tos, ", "), msg.Subject, msg.TextContent)
	b.WriteString("--- END EMAIL ---")
	svc.std.Print(b.String())
}

// consoleServiceMock records messages synchronously for tests.
type consoleServiceMock struct {
	mu   sync.Mutex
	Sent []*core.EmailMessage
}

var _ core.EmailService = (*consoleServiceMock)(nil)

func NewConsoleServiceMock() *consoleServiceMock {
	return &consoleServiceMock{}
}

func (svc *consoleServiceMock) SendMessages(messages ...*core.EmailMessage) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, msg := range messages {
		if err := msg.Render(); err != nil {
			continue
		}
		svc.Sent = append(svc.Sent, msg)
	}
}
