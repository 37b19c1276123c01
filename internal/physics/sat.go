package physics

// satImpact runs the continuous separating-axis test between two snapshots
// and returns the absolute time of impact within the step plus the
// collision direction relative to the first snapshot. The no-collision
// sentinel is (1, DirectionNone).
//
// The pair is normalized first: the snapshot with the smaller local time is
// advanced to the other's local time so both boxes describe the same
// instant. A plain conditional swap keeps the test symmetric; the reported
// direction is flipped back when the roles were exchanged.
func satImpact(collider, collided *snapshot) (float64, Direction) {
	flipped := false
	if collider.localTime < collided.localTime {
		collider, collided = collided, collider
		flipped = true
	}

	colliderBox := collider.box
	collidedBox := collided.box.Translate(
		collided.velocity.Scale(collider.localTime - collided.localTime))

	maxImpact := 0.0
	minSeparation := 1 - collider.localTime
	direction := DirectionNone

	for axis := 0; axis < 2; axis++ {
		a := collider.segment(colliderBox, axis)
		b := collided.segment(collidedBox, axis)
		relative := a.speed - b.speed

		if !a.overlaps(b) {
			if !a.shouldImpact(b) {
				// Separated and not closing on this axis: contact is
				// impossible no matter what the other axis does.
				return 1, DirectionNone
			}
			if impact := a.timeOfImpact(b); impact > maxImpact {
				maxImpact = impact
				switch {
				case relative > 0:
					direction = DirectionEast
				case relative < 0:
					direction = DirectionWest
				default:
					continue
				}
				if axis != 0 {
					direction = direction.RotateLeft()
				}
			}
			if a.shouldSeparate(b) {
				if separation := a.timeOfSeparation(b); separation < minSeparation {
					minSeparation = separation
				}
			}
		}

		if a.touching(b) && a.shouldSeparate(b) && maxImpact == 0 {
			switch {
			case relative > 0:
				direction = DirectionEast
			case relative < 0:
				direction = DirectionWest
			default:
				continue
			}
			if axis != 0 {
				direction = direction.RotateLeft()
			}
			if separation := a.timeOfSeparation(b); separation < minSeparation {
				minSeparation = separation
			}
		}
	}

	// True contact needs overlap on both axes before any axis opens up, and
	// the binding impact has to land inside the remaining step fraction.
	if minSeparation > maxImpact && maxImpact < 1-collider.localTime {
		result := direction
		if flipped {
			result = result.Opposite()
		}
		return collider.localTime + maxImpact, result
	}
	return 1, DirectionNone
}
