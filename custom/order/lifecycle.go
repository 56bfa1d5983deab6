package order

import (
	"tailor_shop/constants"
	"tailor_shop/custom/util"
	"tailor_shop/model"
)

// Order States, in pipeline order
const (
	STATUS_CONFIRMED     = "confirmed"
	STATUS_FABRIC_READY  = "fabric_ready"
	STATUS_CUTTING       = "cutting"
	STATUS_STITCHING     = "stitching"
	STATUS_EMBROIDERY    = "embroidery"
	STATUS_QUALITY_CHECK = "quality_check"
	STATUS_READY         = "ready"
	STATUS_COMPLETED     = "completed"
)

// Position returns the index of status in the pipeline, or -1.
func Position(status string) int {
	for i, s := range model.OrderStatuses {
		if s == status {
			return i
		}
	}
	return -1
}

func IsValidStatus(status string) bool {
	return Position(status) >= 0
}

// NextStatus returns the stage after status. The last stage has no successor.
func NextStatus(status string) (string, bool) {
	pos := Position(status)
	if pos < 0 || pos == len(model.OrderStatuses)-1 {
		return "", false
	}
	return model.OrderStatuses[pos+1], true
}

// CheckTransition validates a status write. Only membership is checked unless
// enforceForward is set, in which case moving back to an earlier stage is
// rejected as well. Skipping stages is always allowed.
func CheckTransition(from, to string, enforceForward bool) error {
	if !IsValidStatus(to) {
		return util.NewConstraintError(util.ViolationCheck, model.ConstraintOrderStatus, constants.INVALID_ORDER_STATUS+": "+to)
	}
	if enforceForward && IsValidStatus(from) && Position(to) < Position(from) {
		return util.NewInvalidError(constants.STATUS_MOVES_BACKWARD + ": " + from + " -> " + to)
	}
	return nil
}
