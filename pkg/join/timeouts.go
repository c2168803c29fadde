package join

import "time"

// Every bounded UI wait in the state machine uses one of these windows.
// Values mirror the timing the target client has been observed to need; a
// step that can legitimately be absent gets a short window and a tolerated
// timeout rather than a failure.
const (
	// audioPromptTimeout bounds the wait for the initial Microphone /
	// Listen only choice after navigation.
	audioPromptTimeout = 30 * time.Second

	// echoTestTimeout bounds the wait for the echo-test confirmation. The
	// echo test may be disabled server-side, so a timeout here is not an
	// error.
	echoTestTimeout = 10 * time.Second

	// mainUIReadyTimeout bounds the first modal-close detector: appearance
	// of any main-meeting-UI control.
	mainUIReadyTimeout = 3 * time.Second

	// overlayGoneTimeout bounds the second modal-close detector:
	// disappearance of the legacy modal overlay.
	overlayGoneTimeout = 2 * time.Second

	// modalCloseGrace is the pause taken when neither detector fires and
	// the modal is assumed closed anyway.
	modalCloseGrace = 500 * time.Millisecond

	// micVerifyTimeout bounds the wait for the mute toggle that proves the
	// audio bridge connected.
	micVerifyTimeout = 5 * time.Second

	// retryPause separates the escape key from reopening the audio dialog
	// during the single audio retry.
	retryPause = 500 * time.Millisecond

	// toolbarJoinAudioTimeout bounds the wait for the toolbar control that
	// reopens the audio dialog.
	toolbarJoinAudioTimeout = 5 * time.Second

	// shareWebcamTimeout bounds the wait for the webcam sharing entry
	// control in the toolbar.
	shareWebcamTimeout = 30 * time.Second

	// webcamDeviceUIPause is the fixed render delay granted to the webcam
	// device-selection dialog after opening it.
	webcamDeviceUIPause = 2 * time.Second

	// cameraOptionTimeout bounds the wait for a selectable camera entry;
	// absence is tolerated (the fake device may be preselected).
	cameraOptionTimeout = 5 * time.Second

	// The final "Start sharing" wait is intentionally unbounded; see the
	// note on shareWebcam.
)
