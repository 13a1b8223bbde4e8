package sensor_test

import (
	gomock "go.uber.org/mock/gomock"

	"github.com/marelab/luminox/sensor"
)

type MockSequenceBuilder struct {
	transport *sensor.MockTransport
	calls     []any
}

func NewMockSequence(transport *sensor.MockTransport) *MockSequenceBuilder {
	return &MockSequenceBuilder{
		transport: transport,
		calls:     []any{},
	}
}

// Exchange expects one command frame to be written and answers it with the
// given response bytes on the next read.
func (b *MockSequenceBuilder) Exchange(frame, response string) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Write([]byte(frame)).Return(len(frame), nil),
		b.transport.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
			copy(p, response)
			return len(response), nil
		}),
	)
	return b
}

func (b *MockSequenceBuilder) PollingMode() *MockSequenceBuilder {
	return b.Exchange("M 1\r\n", "M 01\r\n")
}

func (b *MockSequenceBuilder) OffMode() *MockSequenceBuilder {
	return b.Exchange("M 2\r\n", "M 02\r\n")
}

func (b *MockSequenceBuilder) DateOfMfg() *MockSequenceBuilder {
	return b.Exchange("# 0\r\n", "# 02019 00115\r\n")
}

func (b *MockSequenceBuilder) SerialNumber() *MockSequenceBuilder {
	return b.Exchange("# 1\r\n", "# 00123 45678\r\n")
}

func (b *MockSequenceBuilder) SoftwareVersion() *MockSequenceBuilder {
	return b.Exchange("# 2\r\n", "# 00012\r\n")
}

func (b *MockSequenceBuilder) Build() []any {
	return b.calls
}

// initMockCalls is the transcript of a successful startup sequence: polling
// mode, the three info probes in fixed order, then the default (off) mode.
func initMockCalls(transport *sensor.MockTransport) []any {
	return NewMockSequence(transport).
		PollingMode().
		DateOfMfg().
		SerialNumber().
		SoftwareVersion().
		OffMode().
		Build()
}
