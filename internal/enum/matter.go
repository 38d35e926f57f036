package enum

type MatterStatus string

const (
	MatterStatusOpen   MatterStatus = "open"
	MatterStatusClosed MatterStatus = "closed"
)

func (t MatterStatus) String() string {
	return string(t)
}
