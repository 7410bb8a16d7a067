package counseling

// Topic is a group counseling theme.
type Topic struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Mood is one of the "how do you feel today" emojis.
type Mood struct {
	Emoji string `json:"emoji"`
	Label string `json:"label"`
}

// MaxTopics is how many topics a group request may pick.
const MaxTopics = 2

// GroupPreferredTime is stored as preferred time of every group request.
const GroupPreferredTime = "Sesuai Jadwal Kelompok"

var (
	Classes = []string{"7", "8", "9"}

	Moods = []Mood{
		{"😊", "Senang"},
		{"😐", "Biasa"},
		{"☹️", "Sedih"},
		{"😡", "Kesal"},
		{"😰", "Cemas"},
	}

	Reasons = []string{
		"Masalah Belajar (Males belajar, nilai turun)",
		"Masalah Teman (Dibully, berantem, merasa gak punya teman)",
		"Masalah di Rumah (Berantem sama ortu/saudara)",
		"Masalah Masa Depan (Bingung mau masuk SMA/SMK mana)",
		"Masalah Pribadi (Lagi sedih tapi gak tahu kenapa)",
	}
	Methods      = []string{"Ngobrol langsung di Ruang BK", "Chat WhatsApp dulu", "Video Call"}
	Times        = []string{"Jam Istirahat", "Setelah Pulang Sekolah", "Saat Jam Kosong"}
	Companions   = []string{"Sendiri saja", "Boleh bawa satu teman akrab"}
	Expectations = []string{
		"Dapat solusi/saran",
		"Cuma pengen didengerin aja (curhat)",
		"Pengen dibantu bicara ke orang tua/guru lain",
	}

	Topics = []Topic{
		{"Anti-Galau", "Cara mengelola emosi dan rasa sedih."},
		{"Bestie Goals", "Cara menjalin pertemanan yang sehat dan seru."},
		{"Bye-Bye Malas", "Tips kompak biar semangat belajar bareng."},
		{"Pejuang Masa Depan", "Diskusi bareng tentang mau masuk SMA/SMK mana."},
		{"Stop Bullying", "Gimana cara saling jaga dan menghargai di sekolah."},
		{"Self-Love", "Belajar cara lebih percaya diri bareng-bareng."},
	}
	MemberPrefs = []string{
		"Teman sekelas saja",
		"Bebas (boleh campur dengan kelas lain)",
		"Hanya laki-laki saja / Perempuan saja",
		"Tidak masalah siapa saja",
	}
	ParticipantTypes = []string{
		"Senang berbagi cerita (aktif bicara)",
		"Lebih suka mendengarkan dulu",
		"Tergantung mood",
	}
	GroupExpectations = []string{
		"Dapat teman baru",
		"Merasa tidak sendirian menghadapi masalah",
		"Belajar cara berkomunikasi yang baik",
	}
	SecrecyPromises = []string{"Ya, Saya Berjanji Menjaganya", "Saya Akan Berusaha"}
)

const (
	PrivacyNotice = "Tenang, semua cerita kamu aman di sini dan tidak akan disebarkan ke teman-teman lain."
	SecrecyNotice = "Dalam konseling kelompok, kita akan saling bercerita. Apakah kamu setuju untuk tidak " +
		"menceritakan rahasia atau masalah temanmu kepada orang lain di luar kelompok nanti?"
)

// choices maps the names used by the `choice` validation tag to their options.
var choices = map[string][]string{
	"class":       Classes,
	"mood":        moodEmojis(),
	"reason":      Reasons,
	"method":      Methods,
	"time":        Times,
	"companion":   Companions,
	"expectation": Expectations,
	"topic":       topicNames(),
	"memberpref":  MemberPrefs,
	"participant": ParticipantTypes,
	"groupexp":    GroupExpectations,
	"secrecy":     SecrecyPromises,
}

func moodEmojis() []string {
	emojis := make([]string, 0, len(Moods))
	for _, m := range Moods {
		emojis = append(emojis, m.Emoji)
	}
	return emojis
}

func topicNames() []string {
	names := make([]string, 0, len(Topics))
	for _, t := range Topics {
		names = append(names, t.Name)
	}
	return names
}

// Section is one titled part of a counseling form.
type Section struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Fields []string `json:"fields"`
}

var sections = map[Mode][]Section{
	ModeIndividual: {
		{1, "Kenalan Yuk!", []string{"nama", "kelas", "kontak", "hobi"}},
		{2, "Apa yang Lagi Kamu Rasakan?", []string{"mood", "reasons", "reasonLainnya", "story"}},
		{3, "Biar Makin Nyaman", []string{"method", "time", "companion"}},
		{4, "Harapan & Privasi", []string{"expectation", "privacyAgreed"}},
	},
	ModeGroup: {
		{1, "Identitas Kelompok", []string{"nama", "kelas", "namaKelompok"}},
		{2, "Topik Seru yang Ingin Dibahas", []string{"topics", "whyInterested"}},
		{3, "Kenyamanan dalam Kelompok", []string{"memberPref", "participantType", "expectations", "expectationLainnya"}},
		{4, "Kesepakatan Bersama", []string{"secrecyPromise"}},
	},
}

// Sections returns the ordered sections of the form of the given mode.
func Sections(mode Mode) []Section {
	return sections[mode]
}

// FormOptions is everything a client needs to render both counseling forms.
type FormOptions struct {
	Modes            []Mode               `json:"modes"`
	Sections         map[Mode][]Section   `json:"sections"`
	Classes          []string             `json:"classes"`
	Moods            []Mood               `json:"moods"`
	Reasons          []string             `json:"reasons"`
	Methods          []string             `json:"methods"`
	Times            []string             `json:"times"`
	Companions       []string             `json:"companions"`
	Expectations     []string             `json:"expectations"`
	Topics           []Topic              `json:"topics"`
	MaxTopics        int                  `json:"max_topics"`
	MemberPrefs      []string             `json:"member_prefs"`
	ParticipantTypes []string             `json:"participant_types"`
	GroupExpectation []string             `json:"group_expectations"`
	SecrecyPromises  []string             `json:"secrecy_promises"`
	PrivacyNotice    string               `json:"privacy_notice"`
	SecrecyNotice    string               `json:"secrecy_notice"`
	Defaults         map[Mode]interface{} `json:"defaults"`
}

// Options describes both forms, with defaults prefilled for the given student.
func Options(name string) FormOptions {
	return FormOptions{
		Modes:            []Mode{ModeIndividual, ModeGroup},
		Sections:         sections,
		Classes:          Classes,
		Moods:            Moods,
		Reasons:          Reasons,
		Methods:          Methods,
		Times:            Times,
		Companions:       Companions,
		Expectations:     Expectations,
		Topics:           Topics,
		MaxTopics:        MaxTopics,
		MemberPrefs:      MemberPrefs,
		ParticipantTypes: ParticipantTypes,
		GroupExpectation: GroupExpectations,
		SecrecyPromises:  SecrecyPromises,
		PrivacyNotice:    PrivacyNotice,
		SecrecyNotice:    SecrecyNotice,
		Defaults: map[Mode]interface{}{
			ModeIndividual: NewIndividualForm(name),
			ModeGroup:      NewGroupForm(name),
		},
	}
}
