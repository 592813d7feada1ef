package comm

// CommandCode is the 1-byte command identifier carried in the chunk header.
type CommandCode byte

// Wire command codes.
//
// Read-type commands are answered by a reply frame whose header is the
// command code XOR'ed with replyCodeMask.
const (
	// CmdSDRead reads the last line of the responder's SD card log.
	CmdSDRead CommandCode = 0x10
	// CmdSDAppend appends the payload to the SD card log.
	CmdSDAppend CommandCode = 0x11
	// CmdSDTimestampAppend appends a newline, a timestamp, then the payload.
	CmdSDTimestampAppend CommandCode = 0x12
	// CmdRTCRead reads the responder's real-time clock.
	CmdRTCRead CommandCode = 0x20
	// CmdRTCSet sets the responder's real-time clock from the payload.
	CmdRTCSet CommandCode = 0x21

	// CmdAck acknowledges correct receipt of a frame. Reserved; never
	// dispatched as an ordinary command.
	CmdAck CommandCode = 0xFD
	// CmdNack signals failed receipt of a frame. Reserved; never
	// dispatched as an ordinary command.
	CmdNack CommandCode = 0xFE
)

// replyCodeMask distinguishes reply frames from request frames.
const replyCodeMask CommandCode = 0x80

// Command describes one entry of the wire command vocabulary.
type Command struct {
	// Name is the short identifier used by the console layer.
	Name string
	// Code is the wire code placed in the chunk header.
	Code CommandCode
	// Description is the human-readable command summary.
	Description string
	// Read marks commands that expect a reply frame from the responder.
	Read bool
}

// IsControl reports whether the command is a reserved ACK/NACK control code.
func (c Command) IsControl() bool {
	return c.Code == CmdAck || c.Code == CmdNack
}

// ReplyCode returns the header code the responder uses when answering a
// read-type command.
func (c Command) ReplyCode() CommandCode {
	return c.Code ^ replyCodeMask
}

// commandTable is the single source of truth for the wire vocabulary,
// shared by the initiator and responder roles. It is built once and never
// mutated.
var commandTable = []Command{
	{Name: "sd-read", Code: CmdSDRead, Description: "SD card read", Read: true},
	{Name: "sd-append", Code: CmdSDAppend, Description: "SD card append", Read: false},
	{Name: "sd-tsappend", Code: CmdSDTimestampAppend, Description: "SD card newline, timestamp then append", Read: false},
	{Name: "rtc-read", Code: CmdRTCRead, Description: "RTC read", Read: true},
	{Name: "rtc-set", Code: CmdRTCSet, Description: "RTC set", Read: false},
	{Name: "ack", Code: CmdAck, Description: "Acknowledge", Read: false},
	{Name: "nack", Code: CmdNack, Description: "Not acknowledge", Read: false},
}

// Commands returns a copy of the command table.
func Commands() []Command {
	out := make([]Command, len(commandTable))
	copy(out, commandTable)

	return out
}

// LookupCommand finds the command descriptor for a wire code.
func LookupCommand(code CommandCode) (Command, bool) {
	for _, cmd := range commandTable {
		if cmd.Code == code {
			return cmd, true
		}
	}

	return Command{}, false
}

// LookupCommandByName finds the command descriptor for a console name.
func LookupCommandByName(name string) (Command, bool) {
	for _, cmd := range commandTable {
		if cmd.Name == name {
			return cmd, true
		}
	}

	return Command{}, false
}

// ValidCommandCode reports whether code names a dispatchable (non-control)
// command.
func ValidCommandCode(code CommandCode) bool {
	cmd, ok := LookupCommand(code)

	return ok && !cmd.IsControl()
}
