package domain

// ProgressPhoto stores metadata about a progress photo. The file itself lives in object
// storage under ObjectKey; Date is when the photo was taken.
type ProgressPhoto struct {
	TimestampedRecord `bson:",inline"`
	ObjectKey         string `bson:"objectKey" json:"-" validate:"required"`
	FileName          string `bson:"fileName" json:"fileName"`
	ContentType       string `bson:"contentType" json:"contentType" validate:"required"`
	Size              int64  `bson:"size" json:"size" validate:"gte=0"`
	Caption           string `bson:"caption,omitempty" json:"caption,omitempty"`
}
