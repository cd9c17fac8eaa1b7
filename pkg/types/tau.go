package types

// TauBucket is the coarse time-to-resolution bin used to stratify calibration.
// Right-closed at 1, 3, 7, and 30 days.
type TauBucket int

const (
	// BucketUnknown marks a row whose time-to-event could not be binned.
	BucketUnknown TauBucket = iota
	Bucket0To1D
	Bucket1To3D
	Bucket3To7D
	Bucket7To30D
	BucketOver30D
)

func (b TauBucket) String() string {
	switch b {
	case Bucket0To1D:
		return "0-1d"
	case Bucket1To3D:
		return "1-3d"
	case Bucket3To7D:
		return "3-7d"
	case Bucket7To30D:
		return "7-30d"
	case BucketOver30D:
		return ">30d"
	default:
		return "unknown"
	}
}

// AllTauBuckets enumerates the bucket set in ascending order, excluding BucketUnknown.
func AllTauBuckets() []TauBucket {
	return []TauBucket{Bucket0To1D, Bucket1To3D, Bucket3To7D, Bucket7To30D, BucketOver30D}
}

// ParseTauBucket maps a bucket label back to its enum value.
func ParseTauBucket(label string) TauBucket {
	switch label {
	case "0-1d":
		return Bucket0To1D
	case "1-3d":
		return Bucket1To3D
	case "3-7d":
		return Bucket3To7D
	case "7-30d":
		return Bucket7To30D
	case ">30d":
		return BucketOver30D
	default:
		return BucketUnknown
	}
}

// AssignTauBucket bins a time-to-event-days value into its tau bucket.
// Bins are right-closed at 1, 3, 7, 30 days; anything beyond 30 days falls
// into BucketOver30D, anything non-positive is BucketUnknown.
func AssignTauBucket(timeToEventDays float64) TauBucket {
	switch {
	case timeToEventDays <= 0:
		return BucketUnknown
	case timeToEventDays <= 1:
		return Bucket0To1D
	case timeToEventDays <= 3:
		return Bucket1To3D
	case timeToEventDays <= 7:
		return Bucket3To7D
	case timeToEventDays <= 30:
		return Bucket7To30D
	default:
		return BucketOver30D
	}
}
