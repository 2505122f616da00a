package extract

// ContentType is the kind of content a category label refers to.
type ContentType string

const (
	Audio    ContentType = "audio"
	Document ContentType = "document"
	Video    ContentType = "video"
	File     ContentType = "file"
)

// typeLabels lists the label spellings accepted for each content type, in the
// order they are tried.
var typeLabels = map[ContentType][]string{
	Audio:    {"Audio"},
	Document: {"Document", "Dokumen"},
	Video:    {"Video"},
	File:     {"File"},
}

// Axis identifies one of the six access-grant relations a user can be granted
// categories on.
type Axis string

const (
	AxisAudio         Axis = "audio"
	AxisDocument      Axis = "document"
	AxisVideo         Axis = "video"
	AxisAudioCloud    Axis = "audio_cloud"
	AxisDocumentCloud Axis = "document_cloud"
	AxisFileCloud     Axis = "file_cloud"
)

// Axes holds every axis in provisioning order: standard first, then cloud.
var Axes = []Axis{
	AxisAudio,
	AxisDocument,
	AxisVideo,
	AxisAudioCloud,
	AxisDocumentCloud,
	AxisFileCloud,
}

var axisTypes = map[Axis]struct {
	contentType ContentType
	cloud       bool
}{
	AxisAudio:         {Audio, false},
	AxisDocument:      {Document, false},
	AxisVideo:         {Video, false},
	AxisAudioCloud:    {Audio, true},
	AxisDocumentCloud: {Document, true},
	AxisFileCloud:     {File, true},
}

func (a Axis) Valid() bool {
	_, ok := axisTypes[a]
	return ok
}

func (a Axis) ContentType() ContentType {
	return axisTypes[a].contentType
}

func (a Axis) Cloud() bool {
	return axisTypes[a].cloud
}

func (a Axis) String() string {
	return string(a)
}
