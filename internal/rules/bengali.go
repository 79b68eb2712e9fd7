package rules

import "github.com/fyrsmithlabs/intentd/internal/category"

// DefaultRuleSet compiles the production Bengali rule table. Tier 1 holds
// exact-phrase fixes for known misclassifications, tier 2 the topical
// patterns, tier 3 the broad off-topic catches.
//
// The table is fixed; a pattern that stops compiling is a build-breaking
// regression, so DefaultRuleSet panics rather than returning an error.
func DefaultRuleSet() *RuleSet {
	rs, err := NewRuleSet(defaultSpecs(), defaultAntiSpecs())
	if err != nil {
		panic("rules: default rule table failed to compile: " + err.Error())
	}
	return rs
}

// defaultSpecs returns the production rule table in declaration order.
func defaultSpecs() []Spec {
	var specs []Spec
	specs = append(specs, criticalSpecs()...)
	specs = append(specs, inheritanceSpecs()...)
	specs = append(specs, procedureSpecs()...)
	specs = append(specs, representativeSpecs()...)
	specs = append(specs, statusSpecs()...)
	specs = append(specs, hearingSpecs()...)
	specs = append(specs, rejectionSpecs()...)
	specs = append(specs, khatianSpecs()...)
	specs = append(specs, feeAndDocumentSpecs()...)
	specs = append(specs, conversationSpecs()...)
	specs = append(specs, simpleSpecs()...)
	specs = append(specs, irrelevantSpecs()...)
	return specs
}

// criticalSpecs are exact-phrase fixes for previously observed
// misclassifications. Highest priority.
func criticalSpecs() []Spec {
	return []Spec{
		{ID: "critical.what_is_namjari", Pattern: `নামজারি জিনিসটা কী`, Category: category.NamjariApplicationProcedure, Priority: 1, Description: "what is namjari - procedure question"},
		{ID: "critical.work_on_his_behalf", Pattern: `তার হয়ে নামজারির কাজ করতে পারব`, Category: category.NamjariByRepresentative, Priority: 1, Description: "can I do namjari for him - representative"},
		{ID: "critical.woman_alone", Pattern: `মেয়ে মানুষ.*একা.*নামজারির কাজ করতে পারব`, Category: category.NamjariApplicationProcedure, Priority: 1, Description: "woman asking if she can do namjari alone - procedure, not representative"},
		{ID: "critical.alone_or_need_man", Pattern: `আমি কি একা নামজারির কাজ করতে পারব.*নাকি কোনো পুরুষ মানুষ লাগবে`, Category: category.NamjariApplicationProcedure, Priority: 1, Description: "alone or need a man - procedure"},
		{ID: "critical.hearing_postponed", Pattern: `শুনানির তারিখ.*পিছিয়ে.*দেওয়া হয়েছে`, Category: category.NamjariHearingNotification, Priority: 1, Description: "hearing date postponed - notification"},
		{ID: "critical.hearing_postponed_why", Pattern: `শুনানির তারিখ.*পিছিয়ে.*দিয়েছেন.*কেন`, Category: category.NamjariHearingNotification, Priority: 1, Description: "why was the hearing postponed - notification"},
		{ID: "critical.four_brothers_missing", Pattern: `৪ ভাই.*আছি.*নাম.*নেই`, Category: category.NamjariKhatianCorrection, Priority: 1, Description: "four brothers, names missing - khatian correction"},
		{ID: "critical.four_brothers_add_names", Pattern: `এখন আমরা ৪ ভাই.*খতিয়ানে আমাদের সবার নাম যোগ করতে হবে`, Category: category.NamjariKhatianCorrection, Priority: 1, Description: "four brothers need names added to khatian"},
		{ID: "critical.survey_grandfather", Pattern: `জরিপের সময়.*দাদার নাম.*৪ ভাই`, Category: category.NamjariKhatianCorrection, Priority: 1, Description: "survey recorded grandfather, four brothers now"},
		{ID: "critical.husband_abroad", Pattern: `স্বামী বিদেশে কাজ করে.*কিভাবে করব`, Category: category.NamjariApplicationProcedure, Priority: 1, Description: "husband abroad, how do I do it - procedure"},
		{ID: "critical.father_in_law_land", Pattern: `মেয়ে মানুষ.*শ্বশুর.*জমি.*কিভাবে করব`, Category: category.NamjariApplicationProcedure, Priority: 1, Description: "woman asking about father-in-law's land - procedure"},
		{ID: "critical.weather_smalltalk", Pattern: `আচ্ছা ভাই.*আবহাওয়া.*খারাপ.*বৃষ্টি`, Category: category.Irrelevant, Priority: 1, Description: "weather small talk that opens like a greeting"},
		{ID: "critical.weather_office", Pattern: `আজকে আবহাওয়া.*বৃষ্টি.*অফিসে যাব নাকি`, Category: category.Irrelevant, Priority: 1, Description: "weather vs office visit small talk"},
	}
}

func inheritanceSpecs() []Spec {
	return []Spec{
		{ID: "inheritance.death_with_heir", Pattern: `(দাদা মারা গেছেন|বাবা.*মারা গেছে|মা মারা যাওয়ার পর).*নামজারি.*ওয়ারিশ`, Category: category.NamjariInheritanceDocuments, Priority: 2, Description: "death with heir context"},
		{ID: "inheritance.by_heir", Pattern: `(ওয়ারিশ সূত্রে|উত্তরাধিকার.*নামজারি|মৃত্যুর পর.*নামজারি)`, Category: category.NamjariInheritanceDocuments, Priority: 2, Description: "inheritance by heir"},
		{ID: "inheritance.heir_certificate", Pattern: `(ওয়ারিশ সার্টিফিকেট|মৃত্যু সনদ.*নামজারি|হাল ওয়াশিাননামা)`, Category: category.NamjariInheritanceDocuments, Priority: 2, Description: "heir certificate documents"},
		{ID: "inheritance.daughter_rights", Pattern: `মেয়ের বিয়ে.*মরে গেলে.*সম্পত্তিতে.*অধিকার`, Category: category.NamjariInheritanceDocuments, Priority: 2, Description: "daughter inheritance rights"},
		// Broad phrasing, demoted a tier so topical rules win first.
		{ID: "inheritance.fathers_land_papers", Pattern: `বাবার নামে.*জমি.*মারা.*কী কী কাগজ`, Category: category.NamjariInheritanceDocuments, Priority: 3, Description: "father's land inheritance documents"},
	}
}

func procedureSpecs() []Spec {
	return []Spec{
		{ID: "procedure.registry_separate", Pattern: `(জমি কিনেছি.*রেজিস্ট্রি.*করেছি|রেজিস্ট্রি.*নামজারি.*আলাদা)`, Category: category.NamjariApplicationProcedure, Priority: 2, Description: "bought land, registry separate from namjari"},
		{ID: "procedure.application_rules", Pattern: `(নামজারি.*আবেদনের নিয়ম|নামজারি.*করার পদ্ধতি|নামজারি.*প্রক্রিয়া)`, Category: category.NamjariApplicationProcedure, Priority: 2, Description: "namjari application rules and process"},
		{ID: "procedure.how_to_apply", Pattern: `(কিভাবে নামজারির জন্য আবেদন|অনলাইনে নামজারি|ভূমি অফিসে নামজারি)`, Category: category.NamjariApplicationProcedure, Priority: 2, Description: "how to apply for namjari"},
		{ID: "procedure.without_broker", Pattern: `(দালাল ছাড়া.*নামজারি|নিজেই.*নামজারি.*করতে|কম্পিউটার.*চালাতে পারি না)`, Category: category.NamjariApplicationProcedure, Priority: 2, Description: "do namjari without a broker"},
	}
}

func representativeSpecs() []Spec {
	return []Spec{
		{ID: "representative.america_proxy", Pattern: `আমেরিকায় থাকেন.*তার হয়ে.*নামজারি`, Category: category.NamjariByRepresentative, Priority: 2, Description: "relative in America, proxy namjari"},
		{ID: "representative.abroad_cannot_come", Pattern: `বিদেশে.*আসতে পারবেন না.*হয়ে.*নামজারি`, Category: category.NamjariByRepresentative, Priority: 2, Description: "abroad and cannot come, proxy"},
		{ID: "representative.via_representative", Pattern: `প্রতিনিধি.*দিয়ে.*নামজারি`, Category: category.NamjariByRepresentative, Priority: 2, Description: "namjari via representative"},
		{ID: "representative.power_of_attorney", Pattern: `(পাওয়ার অফ অ্যাটর্নি|অথোরাইজেসন পত্র|ক্ষমতা অর্পনের পত্র)`, Category: category.NamjariByRepresentative, Priority: 2, Description: "power of attorney documents"},
	}
}

func statusSpecs() []Spec {
	return []Spec{
		{ID: "status.no_news", Pattern: `(আবেদন করেছি.*খবর পাইনি|আবেদনটা.*কোন পর্যায়ে|স্ট্যাটাস চেক)`, Category: category.NamjariStatusCheck, Priority: 2, Description: "application status check"},
		{ID: "status.waiting", Pattern: `(৪ মাস ধরে.*অপেক্ষা|প্রক্রিয়াধীন আছে|অগ্রগতি জানতে)`, Category: category.NamjariStatusCheck, Priority: 2, Description: "waiting for progress"},
	}
}

func hearingSpecs() []Spec {
	return []Spec{
		{ID: "hearing.documents_to_bring", Pattern: `(শুনানি.*কাগজ.*নিয়ে যেতে|শুনানীর সময়.*কাগজাদি|আমিন স্যার.*শুনানি)`, Category: category.NamjariHearingDocuments, Priority: 2, Description: "documents required at hearing"},
		{ID: "hearing.witness_documents", Pattern: `(শুনানিতে.*সাক্ষী.*নিয়ে|মূল কপি.*লাগবে|কাগজাদি.*আপলোড)`, Category: category.NamjariHearingDocuments, Priority: 2, Description: "witnesses and original copies at hearing"},
		{ID: "hearing.date_postponed", Pattern: `(শুনানির তারিখ.*পিছিয়ে|শুনানি.*রবিবার.*অফিস বন্ধ|দুই বার.*শুনানি মিস)`, Category: category.NamjariHearingNotification, Priority: 2, Description: "hearing date postponed or missed"},
		{ID: "hearing.sms_notification", Pattern: `(এসএমএস.*ইংরেজিতে|নোটিশে.*শুনানীর তারিখ|মোবাইলে.*মেসেজ)`, Category: category.NamjariHearingNotification, Priority: 2, Description: "hearing SMS or notice"},
	}
}

func rejectionSpecs() []Spec {
	return []Spec{
		{ID: "rejection.appeal_process", Pattern: `(খারিজ.*আপিল.*করা যাবে|নামজারি.*রিজেক্ট হয়েছে|আবেদন.*বাতিল হয়ে)`, Category: category.NamjariRejectedAppeal, Priority: 2, Description: "rejected, appeal process"},
		{ID: "rejection.incomplete_info", Pattern: `(অসম্পূর্ণ তথ্যের জন্য.*রিজেক্ট|আপিলের.*সময়.*শেষ|রিভিউ.*নামঞ্জুর)`, Category: category.NamjariRejectedAppeal, Priority: 2, Description: "rejection for incomplete information"},
		{ID: "rejection.bare_statement", Pattern: `^(খারিজ হয়েছে|আমার আবেদন খারিজ)[\s।]*$`, Category: category.NamjariRejectedAppeal, Priority: 2, Description: "bare rejection statement"},
	}
}

func khatianSpecs() []Spec {
	return []Spec{
		{ID: "khatian.copy_collection", Pattern: `(খতিয়ানের কপি.*সংগ্রহ|নতুন খতিয়ানের কপি|তহশিল অফিস.*খতিয়ান)`, Category: category.NamjariKhatianCopy, Priority: 2, Description: "collecting the khatian copy"},
		{ID: "khatian.certified_copy", Pattern: `(সার্টিফাইড কপি.*সাধারণ কপি|খতিয়ানের কপিটা.*পুরানো|২০১৮ সালের)`, Category: category.NamjariKhatianCopy, Priority: 2, Description: "certified vs regular copy"},
		{ID: "khatian.name_wrong", Pattern: `(খতিয়ানে.*নামটা ভুল|দাগ নম্বরটাও.*ঠিক নাই|বানান ভুল আছে)`, Category: category.NamjariKhatianCorrection, Priority: 2, Description: "name or plot number wrong in khatian"},
		{ID: "khatian.survey_record_wrong", Pattern: `(সার্ভে রেকর্ডে.*দাগ নম্বর ভুল|জমির পরিমাণও ভুল|সংশোধন বাটনে ক্লিক)`, Category: category.NamjariKhatianCorrection, Priority: 2, Description: "survey record correction"},
	}
}

func feeAndDocumentSpecs() []Spec {
	return []Spec{
		{ID: "fee.how_much", Pattern: `(নামজারি করতে.*টাকা লাগে|সরকারি.*ফি.*আছে|কত টাকা খরচ)`, Category: category.NamjariFee, Priority: 2, Description: "namjari cost and government fee"},
		{ID: "fee.poor_person", Pattern: `(গরিব মানুষ.*বেশি টাকা নেই|দালাল.*২০,০০০ টাকা|১১৭০.*টাকা)`, Category: category.NamjariFee, Priority: 2, Description: "fee concern, broker overcharging"},
		{ID: "documents.required_list", Pattern: `(২ মাস ধরে.*দৌড়াদৌড়ি|কাগজের.*তালিকা.*দিতে|তহশিলদার সাহেব.*আরও কাগজ)`, Category: category.NamjariRequiredDocuments, Priority: 2, Description: "list of required documents"},
	}
}

func conversationSpecs() []Spec {
	return []Spec{
		{ID: "conversation.repeat", Pattern: `^(আরেকবার বলুন|আবার বলবেন|একটু সিম্পল করে বলুন)`, Category: category.RepeatAgain, Priority: 2, Description: "please say it again"},
		{ID: "conversation.repeat_context", Pattern: `(আগে যেটা জিজ্ঞেস করেছিলাম|কানে একটু কম শোনে|পড়ালেখাও তেমন জানি না)`, Category: category.RepeatAgain, Priority: 2, Description: "repeat the earlier answer"},
		{ID: "conversation.need_human", Pattern: `(আমার হেল্প দরকার|একজন মানুষ দরকার|সহায়তা দিতে পারেন)`, Category: category.AgentCalling, Priority: 2, Description: "needs a human agent"},
		{ID: "conversation.overwhelmed", Pattern: `(মাথা ঘুরে যায়.*কম্পিউটার.*বুঝি না|৬৫.*এত দিনে এসব শিখব|হতাশ হয়ে পড়েছি)`, Category: category.AgentCalling, Priority: 2, Description: "overwhelmed, wants assistance"},
		{ID: "conversation.goodbye_done", Pattern: `(কাজটা শেষ হয়ে গেছে.*আল্লাহ হাফেজ|আজকের মত থাক.*কোনো প্রশ্ন নেই)`, Category: category.Goodbye, Priority: 2, Description: "work finished, goodbye"},
		{ID: "conversation.goodbye_call", Pattern: `(বিদেশ থেকে কল.*রাত হয়ে গেছে|খোদা হাফেজ.*দোয়া রাখবেন|কলটা রেখে দিচ্ছি)`, Category: category.Goodbye, Priority: 2, Description: "hanging up, goodbye"},
	}
}

func simpleSpecs() []Spec {
	return []Spec{
		{ID: "simple.namjari", Pattern: `^নামজারি[\s।]*$`, Category: category.NamjariEligibility, Priority: 2, Description: "bare namjari"},
		{ID: "simple.mutation", Pattern: `^(মিউটেশনের কাজ|মিউটেশন)[\s।]*$`, Category: category.NamjariEligibility, Priority: 2, Description: "bare mutation"},
	}
}

// irrelevantSpecs catch clearly off-topic queries. The tier-2 entries are
// specific full phrasings; the tier-3 entries are broader keyword catches
// evaluated after every topical rule had its chance.
func irrelevantSpecs() []Spec {
	return []Spec{
		{ID: "irrelevant.paperwork_frustration", Pattern: `(কাগজপত্রের ঝামেলা.*ভালো লাগে না.*সরল মানুষ.*জমি চাষ)`, Category: category.Irrelevant, Priority: 2, Description: "general paperwork frustration"},
		{ID: "irrelevant.sick_cow", Pattern: `(গরু.*অসুস্থ.*পশু চিকিৎসক.*ওষুধ)`, Category: category.Irrelevant, Priority: 2, Description: "sick animal, veterinarian"},
		{ID: "irrelevant.mobile_recharge", Pattern: `মোবাইল.*রিচার্জ.*শেষ.*কীভাবে রিচার্জ করতে হয়`, Category: category.Irrelevant, Priority: 2, Description: "mobile recharge question"},
		{ID: "irrelevant.cattle_sale", Pattern: `গরু বিক্রি.*ভালো দামে.*কোথায়`, Category: category.Irrelevant, Priority: 2, Description: "where to sell cattle"},

		{ID: "irrelevant.birth_registration", Pattern: `জন্মনিবন্ধন.*করতে.*কি`, Category: category.Irrelevant, Priority: 3, Description: "birth registration"},
		{ID: "irrelevant.birth_certificate", Pattern: `জন্মসনদ.*বানাতে`, Category: category.Irrelevant, Priority: 3, Description: "making a birth certificate"},
		{ID: "irrelevant.birth_reg_mobile", Pattern: `জন্মনিবন্ধন.*মোবাইল.*নম্বর`, Category: category.Irrelevant, Priority: 3, Description: "birth registration mobile number"},
		{ID: "irrelevant.hajj", Pattern: `হজ্ব.*করতে.*চাই`, Category: category.Irrelevant, Priority: 3, Description: "wants to perform Hajj"},
		{ID: "irrelevant.hajj_application", Pattern: `হজ্ব.*আবেদন.*নিজে`, Category: category.Irrelevant, Priority: 3, Description: "Hajj application by self"},
		{ID: "irrelevant.umrah", Pattern: `ওমরাহ্‌.*করতে`, Category: category.Irrelevant, Priority: 3, Description: "Umrah pilgrimage"},
		{ID: "irrelevant.job_application", Pattern: `চাকরির.*আবেদন.*করতে`, Category: category.Irrelevant, Priority: 3, Description: "job application"},
		{ID: "irrelevant.company_application", Pattern: `কোম্পানিতে.*আবেদন.*কি.*নিজে`, Category: category.Irrelevant, Priority: 3, Description: "company application by self"},
		{ID: "irrelevant.get_job", Pattern: `চাকরি.*পেতে.*কি`, Category: category.Irrelevant, Priority: 3, Description: "how to get a job"},
		{ID: "irrelevant.land_grab", Pattern: `জমি.*দখল.*করতে.*কি`, Category: category.Irrelevant, Priority: 3, Description: "how to occupy land"},
		{ID: "irrelevant.can_occupy", Pattern: `দখল.*করা.*যাবে`, Category: category.Irrelevant, Priority: 3, Description: "can it be occupied"},
		{ID: "irrelevant.occupy_with_help", Pattern: `কারো.*সাহায্যে.*কি.*দখল`, Category: category.Irrelevant, Priority: 3, Description: "occupy with someone's help"},
		{ID: "irrelevant.passport", Pattern: `পাসপোর্ট.*বানাতে.*কি`, Category: category.Irrelevant, Priority: 3, Description: "making a passport"},
		{ID: "irrelevant.visa", Pattern: `ভিসা.*করতে.*কি`, Category: category.Irrelevant, Priority: 3, Description: "visa processing"},
		{ID: "irrelevant.bad_weather", Pattern: `আবহাওয়া.*খুব.*খারাপ`, Category: category.Irrelevant, Priority: 3, Description: "very bad weather"},
		{ID: "irrelevant.beautiful_day", Pattern: `আজকে.*একটা.*সুন্দর.*দিন`, Category: category.Irrelevant, Priority: 3, Description: "beautiful day small talk"},
		{ID: "irrelevant.lost_book", Pattern: `হারিয়ে.*যাওয়া.*বই`, Category: category.Irrelevant, Priority: 3, Description: "lost book"},
		{ID: "irrelevant.how_to_mute", Pattern: `মিউট.*করতে.*হলে`, Category: category.Irrelevant, Priority: 3, Description: "how to mute"},
		{ID: "irrelevant.extortion", Pattern: `চাঁদাবাজি.*করতে.*পারে`, Category: category.Irrelevant, Priority: 3, Description: "extortion question"},
		{ID: "irrelevant.ten_percent", Pattern: `দশ.*পারসেন্ট.*আবেদন`, Category: category.Irrelevant, Priority: 3, Description: "ten percent application"},
	}
}

// defaultAntiSpecs suppress known false positives. Thank-you and greeting
// phrasings were observed to trip the rejected-appeal rules.
func defaultAntiSpecs() []AntiSpec {
	return []AntiSpec{
		{Category: category.NamjariRejectedAppeal, Pattern: `(ধন্যবাদ|আল্লাহ হাফেজ|বিদায়)`},
		{Category: category.NamjariRejectedAppeal, Pattern: `^(সালাম|আদাব|হ্যালো)`},
	}
}
