package graph

import "time"

// EmailAddress is the Graph emailAddress resource.
type EmailAddress struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

// Recipient wraps an EmailAddress the way Graph message fields do.
type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

// ItemBody is a message or event body. ContentType is Text or HTML.
type ItemBody struct {
	ContentType string `json:"contentType,omitempty"`
	Content     string `json:"content,omitempty"`
}

// Message is the subset of the Graph message resource this tool reads.
type Message struct {
	ID               string      `json:"id,omitempty"`
	Subject          string      `json:"subject,omitempty"`
	BodyPreview      string      `json:"bodyPreview,omitempty"`
	Body             *ItemBody   `json:"body,omitempty"`
	From             *Recipient  `json:"from,omitempty"`
	ToRecipients     []Recipient `json:"toRecipients,omitempty"`
	CcRecipients     []Recipient `json:"ccRecipients,omitempty"`
	ReceivedDateTime time.Time   `json:"receivedDateTime,omitzero"`
	SentDateTime     time.Time   `json:"sentDateTime,omitzero"`
	IsRead           bool        `json:"isRead,omitempty"`
	IsDraft          bool        `json:"isDraft,omitempty"`
	HasAttachments   bool        `json:"hasAttachments,omitempty"`
	Importance       string      `json:"importance,omitempty"`
	WebLink          string      `json:"webLink,omitempty"`
	ParentFolderID   string      `json:"parentFolderId,omitempty"`
}

// MailFolder is the subset of the Graph mailFolder resource this tool
// reads.
type MailFolder struct {
	ID               string `json:"id,omitempty"`
	DisplayName      string `json:"displayName,omitempty"`
	ParentFolderID   string `json:"parentFolderId,omitempty"`
	ChildFolderCount int    `json:"childFolderCount,omitempty"`
	UnreadItemCount  int    `json:"unreadItemCount,omitempty"`
	TotalItemCount   int    `json:"totalItemCount,omitempty"`
}

// User is the subset of the Graph user resource this tool reads.
type User struct {
	ID                string `json:"id,omitempty"`
	DisplayName       string `json:"displayName,omitempty"`
	Mail              string `json:"mail,omitempty"`
	UserPrincipalName string `json:"userPrincipalName,omitempty"`
}

// DateTimeTimeZone is the Graph dateTimeTimeZone resource. DateTime is
// a wall-clock string without offset; TimeZone names the zone it is
// expressed in.
type DateTimeTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// Location is an event location.
type Location struct {
	DisplayName string `json:"displayName,omitempty"`
}

// ResponseStatus is an attendee's or the owner's reply state.
type ResponseStatus struct {
	Response string `json:"response,omitempty"`
}

// Attendee is a meeting attendee. Type is required, optional, or
// resource.
type Attendee struct {
	Type         string          `json:"type,omitempty"`
	Status       *ResponseStatus `json:"status,omitempty"`
	EmailAddress EmailAddress    `json:"emailAddress"`
}

// Event is the subset of the Graph event resource this tool reads.
type Event struct {
	ID             string            `json:"id,omitempty"`
	Subject        string            `json:"subject,omitempty"`
	BodyPreview    string            `json:"bodyPreview,omitempty"`
	Body           *ItemBody         `json:"body,omitempty"`
	Start          *DateTimeTimeZone `json:"start,omitempty"`
	End            *DateTimeTimeZone `json:"end,omitempty"`
	Location       *Location         `json:"location,omitempty"`
	Attendees      []Attendee        `json:"attendees,omitempty"`
	Organizer      *Recipient        `json:"organizer,omitempty"`
	IsAllDay       bool              `json:"isAllDay,omitempty"`
	IsCancelled    bool              `json:"isCancelled,omitempty"`
	IsOrganizer    bool              `json:"isOrganizer,omitempty"`
	ResponseStatus *ResponseStatus   `json:"responseStatus,omitempty"`
	WebLink        string            `json:"webLink,omitempty"`
}

// FileAttachment is an outgoing file attachment. ContentBytes is
// base64-encoded.
type FileAttachment struct {
	ODataType    string `json:"@odata.type"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType,omitempty"`
	ContentBytes string `json:"contentBytes"`
}

// AttachmentODataType is the @odata.type value for file attachments.
const AttachmentODataType = "#microsoft.graph.fileAttachment"

// NewMessage is an outgoing message for sendMail.
type NewMessage struct {
	Subject       string           `json:"subject"`
	Body          ItemBody         `json:"body"`
	ToRecipients  []Recipient      `json:"toRecipients"`
	CcRecipients  []Recipient      `json:"ccRecipients,omitempty"`
	BccRecipients []Recipient      `json:"bccRecipients,omitempty"`
	Attachments   []FileAttachment `json:"attachments,omitempty"`
}

// NewEvent is an outgoing event for event creation.
type NewEvent struct {
	Subject   string           `json:"subject"`
	Body      *ItemBody        `json:"body,omitempty"`
	Start     DateTimeTimeZone `json:"start"`
	End       DateTimeTimeZone `json:"end"`
	Location  *Location        `json:"location,omitempty"`
	Attendees []Attendee       `json:"attendees,omitempty"`
}

// Wire envelopes and request bodies. Kept unexported: the typed
// operations on Client are the only way requests are built.

type messageList struct {
	Value    []Message `json:"value"`
	NextLink string    `json:"@odata.nextLink,omitempty"`
}

type folderList struct {
	Value    []MailFolder `json:"value"`
	NextLink string       `json:"@odata.nextLink,omitempty"`
}

type eventList struct {
	Value    []Event `json:"value"`
	NextLink string  `json:"@odata.nextLink,omitempty"`
}

type idRecord struct {
	ID string `json:"id"`
}

type idList struct {
	Value []idRecord `json:"value"`
}

type sendMailRequest struct {
	Message         NewMessage `json:"message"`
	SaveToSentItems bool       `json:"saveToSentItems"`
}

type replyRequest struct {
	Comment string `json:"comment"`
}

type moveRequest struct {
	DestinationID string `json:"destinationId"`
}

type messagePatch struct {
	IsRead *bool `json:"isRead,omitempty"`
}

type eventResponseRequest struct {
	Comment      string `json:"comment,omitempty"`
	SendResponse bool   `json:"sendResponse"`
}

type cancelRequest struct {
	Comment string `json:"comment,omitempty"`
}
