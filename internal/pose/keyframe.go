package pose

// ObjectID identifies an animated object in the host.
type ObjectID string

// Keyframe is a read-only view of one key on one channel of one object.
type Keyframe struct {
	Time   float64
	Sample Sample
}

// Target is one (object, channel) pair of an interaction's working set.
type Target struct {
	Object  ObjectID
	Channel Channel
}

func (t Target) String() string {
	return string(t.Object) + "/" + t.Channel.String()
}

// Neighborhood is the keyframe bracket around the current time for one
// target, plus the live pose at the moment the interaction started.
// When both neighbors are present, Previous.Time < Time < Next.Time.
type Neighborhood struct {
	Object   ObjectID
	Channel  Channel
	Time     float64
	Previous *Keyframe
	Next     *Keyframe
	Current  Sample
}

func (n Neighborhood) Target() Target {
	return Target{Object: n.Object, Channel: n.Channel}
}

// Degenerate reports that there is nothing to blend toward.
func (n Neighborhood) Degenerate() bool {
	return n.Previous == nil && n.Next == nil
}
