package rig

// Node naming follows the outliner conventions of the bipedal template:
// capitalized words joined by underscores, with bilateral counterparts
// carrying the Mirrored_ prefix.

const (
	// MirrorPrefix marks the node created on the opposite side of a
	// bilateral joint.
	MirrorPrefix = "Mirrored_"

	// DefaultSpineCount is the vertebra count a fresh rig starts with.
	DefaultSpineCount = 3

	defaultHelpURL = "https://www.example.com/autorig"
)

// MirroredName returns the node name of a joint's bilateral counterpart.
func MirroredName(name string) string {
	return MirrorPrefix + name
}

var fingers = []string{
	"Thumb",
	"Index_Finger",
	"Middle_Finger",
	"Ring_Finger",
	"Pinky_Finger",
}

var fingerSegments = []string{"Base", "Middle", "Distal", "Tip"}

func fingerJoints() []string {
	out := make([]string, 0, len(fingers)*len(fingerSegments))
	for _, finger := range fingers {
		for _, segment := range fingerSegments {
			out = append(out, finger+"_"+segment)
		}
	}
	return out
}

// catalogNames lists every joint a rig manages, in UI order: center, arm,
// fingers, leg. The spine chain is managed separately.
func catalogNames() []string {
	names := []string{
		"Pelvis", "Neck", "Head",
		"Shoulder", "Elbow", "Wrist",
	}
	names = append(names, fingerJoints()...)
	names = append(names, "Hip", "Knee", "Ankle", "Ball_Of_Foot", "Toes")
	return names
}

// bilateralNames lists the joints the mirror pass walks, in its fixed
// order: arm, fingers, leg. Center joints (Pelvis, Neck, Head) never
// mirror.
func bilateralNames() []string {
	names := []string{"Shoulder", "Elbow", "Wrist"}
	names = append(names, fingerJoints()...)
	names = append(names, "Hip", "Knee", "Ankle", "Ball_Of_Foot", "Toes")
	return names
}
