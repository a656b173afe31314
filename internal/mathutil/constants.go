package mathutil

// Epsilon is the tolerance used when comparing blended transforms.
const Epsilon = 1e-9

// Orthographic view matrices for previews. Rows 0 and 1 map to screen X and Y
// (Y up), row 2 is depth.
var (
	// ViewFront looks down -Z: screen shows X/Y.
	ViewFront = Mat3Identity()

	// ViewTop looks down -Y: screen shows X/-Z.
	ViewTop = RotX(Deg2Rad(90))

	// ViewSide looks down -X: screen shows Z/Y.
	ViewSide = RotY(Deg2Rad(90))
)
